package main

import (
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ALH477/dcf-serializer/internal/observability"
	"github.com/ALH477/dcf-serializer/pkg/dcfcodec"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the debug HTTP server (health, metrics, ad-hoc decode inspector)",
	Long: `serve is ops tooling for this binary only: it exposes /healthz,
/metrics, and a /decode inspector for pasting a hex-encoded frame. It is not
a transport implementation of the DCF protocol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		observability.RegisterMetrics()

		started := time.Now()
		r := gin.New()
		r.Use(gin.Recovery())
		r.Use(observability.RequestLogger(logger))
		r.Use(observability.RequestMetricsMiddleware())
		r.Use(cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
		_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

		r.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
				"uptime": time.Since(started).String(),
			})
		})
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
		r.POST("/decode", decodeInspectorHandler)

		logger.Info().Str("addr", serveAddr).Msg("debug server listening")
		return r.Run(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":9400", "listen address for the debug HTTP server")
}

type decodeRequest struct {
	HexFrame string `json:"hex_frame" binding:"required"`
}

type decodeResponse struct {
	MsgType      uint16 `json:"msg_type"`
	Flags        uint8  `json:"flags"`
	PayloadLen   uint32 `json:"payload_len"`
	Sequence     uint32 `json:"sequence"`
	CRCVerified  bool   `json:"crc_verified"`
	FirstTag     string `json:"first_value_tag"`
	RemainingLen int    `json:"remaining_bytes"`
}

// decodeInspectorHandler decodes a hex-encoded frame and reports its header
// fields plus the tag of the first payload value, without attempting a full
// schema-aware decode. It never writes framing logic of its own — it only
// calls into pkg/dcfcodec, the same as any other caller would.
func decodeInspectorHandler(c *gin.Context) {
	var req decodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw, err := hex.DecodeString(req.HexFrame)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hex: " + err.Error()})
		return
	}

	r, err := dcfcodec.NewReader(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": dcfcodec.ErrorKind(err).String()})
		return
	}

	h := r.Header()
	resp := decodeResponse{
		MsgType:      h.MsgType,
		Flags:        uint8(h.Flags),
		PayloadLen:   h.PayloadLen,
		Sequence:     h.Sequence,
		CRCVerified:  r.CRCVerified(),
		FirstTag:     r.PeekType().String(),
		RemainingLen: r.Remaining(),
	}
	c.JSON(http.StatusOK, resp)
}
