package analytics

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

const (
	AnonymousConsumer = "anonymous"
	UnknownService    = "unknown"
)

// RawRecord is one request record exactly as returned by the backend.
type RawRecord = json.RawMessage

// Record is the canonical view of a matched request. Downstream statistics
// only ever see this shape.
type Record struct {
	Timestamp   string  `json:"timestamp"`
	HTTPMethod  string  `json:"httpMethod"`
	URI         string  `json:"uri"`
	UpstreamURI string  `json:"upstreamUri,omitempty"`
	StatusCode  int     `json:"statusCode"`
	ConsumerID  string  `json:"consumerId"`
	ServiceID   string  `json:"serviceId"`
	RouteID     string  `json:"routeId"`
	Latency     Latency `json:"latency"`
	ClientIP    string  `json:"clientIp"`
	TraceID     string  `json:"traceId"`
	RequestID   string  `json:"requestId,omitempty"`
}

type Latency struct {
	TotalMs    float64 `json:"totalMs"`
	GatewayMs  float64 `json:"gatewayMs"`
	UpstreamMs float64 `json:"upstreamMs"`
}

func Normalize(raw RawRecord) Record {
	r := gjson.ParseBytes(raw)
	return Record{
		Timestamp:   r.Get("request_start").String(),
		HTTPMethod:  r.Get("http_method").String(),
		URI:         r.Get("request_uri").String(),
		UpstreamURI: r.Get("upstream_uri").String(),
		StatusCode:  statusCode(r),
		ConsumerID:  stringOr(r.Get("consumer"), AnonymousConsumer),
		ServiceID:   stringOr(r.Get("gateway_service"), UnknownService),
		RouteID:     r.Get("route").String(),
		Latency: Latency{
			TotalMs:    r.Get("latencies_response_ms").Float(),
			GatewayMs:  r.Get("latencies_kong_gateway_ms").Float(),
			UpstreamMs: r.Get("latencies_upstream_ms").Float(),
		},
		ClientIP:  r.Get("client_ip").String(),
		TraceID:   r.Get("trace_id").String(),
		RequestID: r.Get("request_id").String(),
	}
}

func NormalizeAll(raws []RawRecord) []Record {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, Normalize(raw))
	}
	return records
}

// statusCode resolves status_code, then response_http_status, then 0. A zero
// primary value counts as absent.
func statusCode(r gjson.Result) int {
	if code := r.Get("status_code").Int(); code != 0 {
		return int(code)
	}
	return int(r.Get("response_http_status").Int())
}

func stringOr(v gjson.Result, fallback string) string {
	if s := v.String(); s != "" {
		return s
	}
	return fallback
}
