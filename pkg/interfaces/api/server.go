package api

import (
	"time"

	"github.com/valyala/fasthttp"
)

// NewServer wraps the handler in a fasthttp server with conservative timeouts
func NewServer(handler *Handler) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:            handler.HandleRequest,
		Name:               "clinicaldemand",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
}
