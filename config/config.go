package config

import "time"

// Config is parsed from the environment with the QKART prefix.
type Config struct {
	Web   Web
	Cors  Cors
	DB    DB
	JWT   JWT
	Cart  Cart
	Oauth Oauth
	Rate  Rate
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8082"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string `conf:"default:"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost:5432"`
	Name       string `conf:"default:qkart"`
	DisableTLS bool   `conf:"default:true"`
}

type JWT struct {
	Secret                  string `conf:"default:secret-key,mask"`
	AccessExpirationMinutes int    `conf:"default:30"`
}

// Cart carries the sentinel defaults a fresh user starts with. An address
// equal to DefaultAddress means the user never set one.
type Cart struct {
	DefaultPaymentOption string `conf:"default:PAYMENT_OPTION_DEFAULT"`
	DefaultAddress       string `conf:"default:ADDRESS_NOT_SET"`
	DefaultWalletMoney   int    `conf:"default:500"`
}

type Oauth struct {
	DiscoveryTimeout time.Duration `conf:"default:30s"`
	LoginRedirectURL string        `conf:"default:/"`
	Google           Provider
}

type Provider struct {
	Client      string `conf:"default:"`
	Secret      string `conf:"default:,mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string `conf:"default:"`
}

type Rate struct {
	LoginBurst      int     `conf:"default:5"`
	LoginPerSecond  float64 `conf:"default:1"`
	LoginExpiryMins int     `conf:"default:10"`
}
