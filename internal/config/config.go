package config

import (
	"errors"
	"os"
)

type Config struct {
	HTTP_PORT     string `env:"HTTP_PORT"`
	DB_STRING     string `env:"DB_STRING"`
	KAFKA_BROKERS string `env:"KAFKA_BROKERS"`
	KAFKA_TOPIC   string `env:"KAFKA_TOPIC"`

	// RAZORPAY_KEY_ID is public and may be sent to clients;
	// RAZORPAY_KEY_SECRET is server-only and must never leave the process.
	RAZORPAY_KEY_ID     string `env:"RAZORPAY_KEY_ID"`
	RAZORPAY_KEY_SECRET string `env:"RAZORPAY_KEY_SECRET"`

	CURRENCY string `env:"CURRENCY"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTP_PORT:           os.Getenv("HTTP_PORT"),
		DB_STRING:           os.Getenv("DB_STRING"),
		KAFKA_BROKERS:       os.Getenv("KAFKA_BROKERS"),
		KAFKA_TOPIC:         os.Getenv("KAFKA_TOPIC"),
		RAZORPAY_KEY_ID:     os.Getenv("RAZORPAY_KEY_ID"),
		RAZORPAY_KEY_SECRET: os.Getenv("RAZORPAY_KEY_SECRET"),
		CURRENCY:            os.Getenv("CURRENCY"),
	}

	if cfg.HTTP_PORT == "" {
		cfg.HTTP_PORT = "8080"
	}
	if cfg.KAFKA_TOPIC == "" {
		cfg.KAFKA_TOPIC = "orders.events"
	}
	if cfg.CURRENCY == "" {
		cfg.CURRENCY = "INR"
	}

	if cfg.DB_STRING == "" {
		return nil, errors.New("DB_STRING is required")
	}
	if cfg.RAZORPAY_KEY_SECRET == "" {
		return nil, errors.New("RAZORPAY_KEY_SECRET is required")
	}

	return cfg, nil
}
