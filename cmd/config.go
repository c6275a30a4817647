package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=3000"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data/chat"`
	HistoryLimit         int           `env:"HISTORY_LIMIT,default=50"`
	DeletionWindow       time.Duration `env:"DELETION_WINDOW,default=5m"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	GCInterval           time.Duration `env:"GC_INTERVAL,default=5m"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=5s"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
}
