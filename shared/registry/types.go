// shared/registry/types.go
package registry

// RedisRegistryHashPrefix prefixes the Redis hash keys holding registration
// data, one hash per service type: "services:<serviceType>".
const RedisRegistryHashPrefix = "services:"

// ServiceInfo describes one registered service instance. Stored as JSON in the
// registry hash and used for discovery and for building the game assignment
// ring.
type ServiceInfo struct {
	ServiceID   string            `json:"serviceId"`
	ServiceType string            `json:"serviceType"`
	IP          string            `json:"ip"`
	Port        int               `json:"port"`
	LastSeen    int64             `json:"lastSeen"` // unix milliseconds of the last heartbeat
	Metadata    map[string]string `json:"metadata,omitempty"`
}
