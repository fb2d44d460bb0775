// Package autoload initializes the global logger from the environment as a
// side effect of being imported.
package autoload

import (
	configx "openbank-advisor/pkg/config"
	logx "openbank-advisor/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}
