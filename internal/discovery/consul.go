// Package discovery registers the HTTP service with a Consul agent.
package discovery

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/consul/api"
)

type ConsulClient struct {
	client *api.Client
}

func NewConsulClient(address string) (*ConsulClient, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}
	return &ConsulClient{client: client}, nil
}

// Registration builds the agent payload with an HTTP check on /healthz.
func Registration(serviceID, serviceName, port string) *api.AgentServiceRegistration {
	host := os.Getenv("HOSTNAME")
	if host == "" {
		host = serviceName
	}
	p, _ := strconv.Atoi(port)
	return &api.AgentServiceRegistration{
		ID:      serviceID,
		Name:    serviceName,
		Address: host,
		Port:    p,
		Tags:    []string{"http", "inventory"},
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%s/healthz", host, port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
}

func (c *ConsulClient) RegisterService(serviceID, serviceName, port string) error {
	return c.client.Agent().ServiceRegister(Registration(serviceID, serviceName, port))
}

func (c *ConsulClient) DeregisterService(serviceID string) error {
	return c.client.Agent().ServiceDeregister(serviceID)
}
