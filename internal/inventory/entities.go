package inventory

import (
	"github.com/spf13/cast"
)

type Timestamps struct {
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

type Service struct {
	ServiceID      string     `json:"serviceId"`
	Name           string     `json:"name"`
	Host           string     `json:"host"`
	Port           int        `json:"port"`
	Protocol       string     `json:"protocol"`
	Path           string     `json:"path"`
	Retries        int        `json:"retries"`
	ConnectTimeout int        `json:"connectTimeout"`
	WriteTimeout   int        `json:"writeTimeout"`
	ReadTimeout    int        `json:"readTimeout"`
	Tags           []string   `json:"tags"`
	Enabled        bool       `json:"enabled"`
	Metadata       Timestamps `json:"metadata"`
}

type Route struct {
	RouteID      string     `json:"routeId"`
	Name         string     `json:"name"`
	Protocols    []string   `json:"protocols"`
	Methods      []string   `json:"methods"`
	Hosts        []string   `json:"hosts"`
	Paths        []string   `json:"paths"`
	StripPath    bool       `json:"stripPath"`
	PreserveHost bool       `json:"preserveHost"`
	ServiceID    string     `json:"serviceId"`
	Tags         []string   `json:"tags"`
	Metadata     Timestamps `json:"metadata"`
}

type Consumer struct {
	ConsumerID string     `json:"consumerId"`
	Username   string     `json:"username"`
	CustomID   string     `json:"customId"`
	Tags       []string   `json:"tags"`
	Metadata   Timestamps `json:"metadata"`
}

type PluginScope struct {
	ConsumerID string `json:"consumerId,omitempty"`
	ServiceID  string `json:"serviceId,omitempty"`
	RouteID    string `json:"routeId,omitempty"`
	Global     bool   `json:"global"`
}

type Plugin struct {
	PluginID  string         `json:"pluginId"`
	Name      string         `json:"name"`
	Enabled   bool           `json:"enabled"`
	Config    map[string]any `json:"config"`
	Protocols []string       `json:"protocols"`
	Tags      []string       `json:"tags"`
	Scoping   PluginScope    `json:"scoping"`
	Metadata  Timestamps     `json:"metadata"`
}

type ControlPlane struct {
	ControlPlaneID       string            `json:"controlPlaneId"`
	Name                 string            `json:"name"`
	Description          string            `json:"description"`
	Labels               map[string]string `json:"labels"`
	ClusterType          string            `json:"clusterType"`
	ControlPlaneEndpoint string            `json:"controlPlaneEndpoint"`
	TelemetryEndpoint    string            `json:"telemetryEndpoint"`
	CreatedAt            string            `json:"createdAt"`
	UpdatedAt            string            `json:"updatedAt"`
}

func serviceFromRaw(m map[string]any) Service {
	return Service{
		ServiceID:      cast.ToString(m["id"]),
		Name:           cast.ToString(m["name"]),
		Host:           cast.ToString(m["host"]),
		Port:           cast.ToInt(m["port"]),
		Protocol:       cast.ToString(m["protocol"]),
		Path:           cast.ToString(m["path"]),
		Retries:        cast.ToInt(m["retries"]),
		ConnectTimeout: cast.ToInt(m["connect_timeout"]),
		WriteTimeout:   cast.ToInt(m["write_timeout"]),
		ReadTimeout:    cast.ToInt(m["read_timeout"]),
		Tags:           stringSlice(m["tags"]),
		Enabled:        boolOr(m["enabled"], true),
		Metadata:       timestampsFromRaw(m),
	}
}

func routeFromRaw(m map[string]any) Route {
	return Route{
		RouteID:      cast.ToString(m["id"]),
		Name:         cast.ToString(m["name"]),
		Protocols:    stringSlice(m["protocols"]),
		Methods:      stringSlice(m["methods"]),
		Hosts:        stringSlice(m["hosts"]),
		Paths:        stringSlice(m["paths"]),
		StripPath:    cast.ToBool(m["strip_path"]),
		PreserveHost: cast.ToBool(m["preserve_host"]),
		ServiceID:    refID(m["service"]),
		Tags:         stringSlice(m["tags"]),
		Metadata:     timestampsFromRaw(m),
	}
}

func consumerFromRaw(m map[string]any) Consumer {
	return Consumer{
		ConsumerID: cast.ToString(m["id"]),
		Username:   cast.ToString(m["username"]),
		CustomID:   cast.ToString(m["custom_id"]),
		Tags:       stringSlice(m["tags"]),
		Metadata:   timestampsFromRaw(m),
	}
}

func pluginFromRaw(m map[string]any) Plugin {
	scope := PluginScope{
		ConsumerID: refID(m["consumer"]),
		ServiceID:  refID(m["service"]),
		RouteID:    refID(m["route"]),
	}
	scope.Global = scope.ConsumerID == "" && scope.ServiceID == "" && scope.RouteID == ""

	config := cast.ToStringMap(m["config"])
	if config == nil {
		config = map[string]any{}
	}

	return Plugin{
		PluginID:  cast.ToString(m["id"]),
		Name:      cast.ToString(m["name"]),
		Enabled:   boolOr(m["enabled"], true),
		Config:    config,
		Protocols: stringSlice(m["protocols"]),
		Tags:      stringSlice(m["tags"]),
		Scoping:   scope,
		Metadata:  timestampsFromRaw(m),
	}
}

func controlPlaneFromRaw(m map[string]any) ControlPlane {
	cfg := cast.ToStringMap(m["config"])
	labels := cast.ToStringMapString(m["labels"])
	if labels == nil {
		labels = map[string]string{}
	}
	return ControlPlane{
		ControlPlaneID:       cast.ToString(m["id"]),
		Name:                 cast.ToString(m["name"]),
		Description:          cast.ToString(m["description"]),
		Labels:               labels,
		ClusterType:          cast.ToString(cfg["cluster_type"]),
		ControlPlaneEndpoint: cast.ToString(cfg["control_plane_endpoint"]),
		TelemetryEndpoint:    cast.ToString(cfg["telemetry_endpoint"]),
		CreatedAt:            cast.ToString(m["created_at"]),
		UpdatedAt:            cast.ToString(m["updated_at"]),
	}
}

func timestampsFromRaw(m map[string]any) Timestamps {
	return Timestamps{
		CreatedAt: cast.ToInt64(m["created_at"]),
		UpdatedAt: cast.ToInt64(m["updated_at"]),
	}
}

// refID extracts the id of a foreign-key reference such as {"id": "..."}.
func refID(v any) string {
	return cast.ToString(cast.ToStringMap(v)["id"])
}

func stringSlice(v any) []string {
	s := cast.ToStringSlice(v)
	if s == nil {
		return []string{}
	}
	return s
}

func boolOr(v any, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return cast.ToBool(v)
}
