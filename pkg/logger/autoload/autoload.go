// Package autoload configures the global logger from the LOG_* environment
// on blank import.
package autoload

import (
	configx "github.com/callsense-ai/callsense/pkg/config"
	logx "github.com/callsense-ai/callsense/pkg/logger"
)

func init() {
	cfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*cfg)
}
