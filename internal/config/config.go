package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

// TimeZone - таймзона клиники, выставляется при загрузке конфигурации.
// Все даты без явной таймзоны парсятся в ней.
var TimeZone = time.UTC

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"Africa/Cairo"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"clinic_booking:clinic_booking"`
		BasicClients       []ConfigBasicClient
	}

	Storage struct {
		// Бэкенд хранения: memory или file
		Backend     string `env:"STORAGE_BACKEND" envDefault:"file"`
		Dir         string `env:"STORAGE_DIR" envDefault:"./data"`
		BookingsKey string `env:"STORAGE_BOOKINGS_KEY" envDefault:"clinic_bookings"`
	}

	WhatsApp struct {
		Enabled     bool   `env:"WHATSAPP_ENABLED" envDefault:"true"`
		GatewayUrl  string `env:"WHATSAPP_GATEWAY_URL" envDefault:"https://wa.me"`
		ClinicPhone string `env:"WHATSAPP_CLINIC_PHONE" envDefault:"201010557102"`
	}

	RabbitMq struct {
		Enabled bool   `env:"RABBITMQ_ENABLED"`
		AmqpUri string `env:"RABBITMQ_URL"`

		QueueConfig struct {
			BookingQueueName     string `env:"RABBITMQ_BOOKING_QUEUE" envDefault:"clinic.bookings"`
			BookingQueueExchange string `env:"RABBITMQ_BOOKING_EXCHANGE"`
			BookingQueueBind     string `env:"RABBITMQ_BOOKING_BIND"`
		}
	}

	Cache struct {
		Enabled bool `env:"CACHE_ENABLED" envDefault:"true"`
		Size    int  `env:"CACHE_SIZE" envDefault:"64"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	// Таймзона клиники, при ошибке остаемся в UTC
	if loc, err := time.LoadLocation(cfg.App.Timezone); err == nil {
		TimeZone = loc
	}

	// Разбор клиентов basic-авторизации
	if cfg.Auth.BasicClients == nil {
		cfg.Auth.BasicClients = []ConfigBasicClient{}
	}
	clientPairs := strings.Split(cfg.Auth.BasicClientsString, ",")
	for _, pair := range clientPairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			cfg.Auth.BasicClients = append(cfg.Auth.BasicClients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}

	return cfg, nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
