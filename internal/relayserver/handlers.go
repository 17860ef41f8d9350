package relayserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edgefn/gemini-relay/internal/metrics"
	"github.com/edgefn/gemini-relay/internal/relay"
)

const (
	msgKeyNotConfigured = "Gemini API Key not configured on the server."
	msgPayloadMissing   = "Payload is missing from the request body."
	msgUpstreamFailed   = "Failed to connect to Gemini API: "
	msgUnexpected       = "An unexpected server error occurred: "
)

type relayRequest struct {
	Model   string          `json:"model"`
	Payload json.RawMessage `json:"payload"`
}

func makeRelayHandler(rc *relay.Client, mc *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The configuration check comes before anything else; a relay
		// without a key answers every proxy request the same way.
		if strings.TrimSpace(rc.APIKey) == "" {
			mc.RecordRequest(metrics.OutcomeConfig)
			writeError(c, http.StatusInternalServerError, msgKeyNotConfigured)
			return
		}

		body, err := ioReadAllLimit(c.Request.Body, 16<<20) // 16MB
		if err != nil {
			mc.RecordRequest(metrics.OutcomeInternal)
			writeError(c, http.StatusInternalServerError, msgUnexpected+err.Error())
			return
		}

		var req relayRequest
		if err := json.Unmarshal(body, &req); err != nil {
			mc.RecordRequest(metrics.OutcomeInternal)
			writeError(c, http.StatusInternalServerError, msgUnexpected+err.Error())
			return
		}

		if !hasPayload(req.Payload) {
			mc.RecordRequest(metrics.OutcomeValidation)
			writeError(c, http.StatusBadRequest, msgPayloadMissing)
			return
		}

		model := strings.TrimSpace(req.Model)
		if model == "" {
			model = rc.DefaultModel
		}
		c.Set("relay.model", model)

		res, err := rc.GenerateContent(c.Request.Context(), model, req.Payload)
		if err != nil {
			var rerr *relay.Error
			if !errors.As(err, &rerr) {
				rerr = &relay.Error{Kind: relay.KindInternal, Err: err}
			}
			switch rerr.Kind {
			case relay.KindConfig:
				mc.RecordRequest(metrics.OutcomeConfig)
				writeError(c, http.StatusInternalServerError, msgKeyNotConfigured)
			case relay.KindUpstream:
				mc.RecordRequest(metrics.OutcomeUpstream)
				writeError(c, http.StatusInternalServerError, msgUpstreamFailed+rerr.Error())
			default:
				mc.RecordRequest(metrics.OutcomeInternal)
				writeError(c, http.StatusInternalServerError, msgUnexpected+rerr.Error())
			}
			return
		}

		c.Set("relay.upstream_status", res.Status)
		c.Set("relay.latency_ms", res.LatencyMs)
		mc.RecordRequest(metrics.OutcomeOK)
		mc.ObserveUpstream(time.Duration(res.LatencyMs) * time.Millisecond)

		ct := res.ContentType
		if strings.TrimSpace(ct) == "" {
			ct = "application/json"
		}
		c.Data(res.Status, ct, res.Body)
	}
}

// hasPayload decides whether "payload" counts as present. Only an absent
// field, JSON null and a JSON empty string are missing; {} and 0 are
// present values and get forwarded.
func hasPayload(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return false
	}
	if bytes.Equal(t, []byte("null")) {
		return false
	}
	if bytes.Equal(t, []byte(`""`)) {
		return false
	}
	return true
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func ioReadAllLimit(rc io.ReadCloser, limit int64) ([]byte, error) {
	defer func() { _ = rc.Close() }()
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, rc, limit+1); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if int64(buf.Len()) > limit {
		return nil, errors.New("request body too large")
	}
	return buf.Bytes(), nil
}
