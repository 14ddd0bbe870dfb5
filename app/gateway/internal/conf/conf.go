package conf

import "github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"

type Bootstrap struct {
	Server *Server        `json:"server"`
	Data   *Data          `json:"data"`
	Auth   *Auth          `json:"auth"`
	Radar  *config.Config `json:"radar"`
}

// Auth 为空时 ClickBank 接口不校验 token
type Auth struct {
	JwtKey string `json:"jwt_key"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

type Data struct {
	Database *Database `json:"database"`
}

type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}
