package http

import (
	"time"
)

type Http struct {
	Host            string
	Port            int
	ContextPath     string
	BaseURL         string // external base URL, used to build invitation links
	PProf           bool
	ExposeMetrics   bool
	AccessLog       bool
	BodyLimit       int
	ReadTimeout     int
	WriteTimeout    int
	IdleTimeout     int
	ShutdownTimeout int
	TLS             TLS
	Auth            Auth
}

type TLS struct {
	CertFile string
	KeyFile  string
}

type Auth struct {
	SecretKey     string
	AccessExpire  time.Duration
	RefreshExpire time.Duration
}
