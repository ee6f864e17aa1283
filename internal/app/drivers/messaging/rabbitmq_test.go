package messaging

import (
	"intake-service/internal/app/config"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionURI(t *testing.T) {
	t.Run("Credentials Survive A Round Trip", func(t *testing.T) {
		uri := connectionURI(&config.DriverConfig{RabbitMQ: config.RabbitMQ{
			Host:     "broker",
			Port:     "5673",
			Username: "intake",
			Password: "p@ss/word",
		}})

		parsed, err := amqp091.ParseURI(uri)
		require.NoError(t, err)
		assert.Equal(t, "broker", parsed.Host)
		assert.Equal(t, 5673, parsed.Port)
		assert.Equal(t, "intake", parsed.Username)
		assert.Equal(t, "p@ss/word", parsed.Password)
		assert.Equal(t, "/", parsed.Vhost)
	})

	t.Run("Bad Port Falls Back To Default", func(t *testing.T) {
		uri := connectionURI(&config.DriverConfig{RabbitMQ: config.RabbitMQ{Host: "broker", Port: "amqp"}})

		parsed, err := amqp091.ParseURI(uri)
		require.NoError(t, err)
		assert.Equal(t, defaultRabbitMQPort, parsed.Port)
	})
}
