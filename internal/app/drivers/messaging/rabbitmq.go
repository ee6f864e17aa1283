package messaging

import (
	"intake-service/internal/app/config"
	"intake-service/internal/pkg/constvars"
	"log"
	"strconv"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	defaultRabbitMQPort   = 5672
	rabbitMQDialTimeout   = 10 * time.Second
	rabbitMQHeartbeatTime = 10 * time.Second
)

// NewRabbitMQ dials the broker with a bounded connect timeout and names the
// connection after the service so it can be told apart in the management UI.
func NewRabbitMQ(driverConfig *config.DriverConfig) *amqp091.Connection {
	conn, err := amqp091.DialConfig(connectionURI(driverConfig), amqp091.Config{
		Heartbeat: rabbitMQHeartbeatTime,
		Dial:      amqp091.DefaultDial(rabbitMQDialTimeout),
		Properties: amqp091.Table{
			"connection_name": constvars.SERVICE_NAME,
		},
	})
	if err != nil {
		log.Fatalf("Failed to connect to rabbitMQ: %s", err.Error())
	}
	log.Println("Successfully connected to rabbitMQ")
	return conn
}

// connectionURI escapes the credentials, which a plain format string would not.
func connectionURI(driverConfig *config.DriverConfig) string {
	port, err := strconv.Atoi(driverConfig.RabbitMQ.Port)
	if err != nil || port <= 0 {
		port = defaultRabbitMQPort
	}

	uri := amqp091.URI{
		Scheme:   "amqp",
		Host:     driverConfig.RabbitMQ.Host,
		Port:     port,
		Username: driverConfig.RabbitMQ.Username,
		Password: driverConfig.RabbitMQ.Password,
		Vhost:    "/",
	}
	return uri.String()
}
