// Command analyst runs a length-framed TCP request/response loop
// implementing the simplify/validate subset of the wire protocol
// contract, driving a Structure and Simplifier over the wire. It is a
// real, working stand-in for the spec's ZMQ server, not the ZMQ
// protocol itself.
package main

import (
	"net"
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gitrdm/congru/internal/wireproto"
	"github.com/gitrdm/congru/pkg/congru"
)

func main() {
	log := buildLogger(os.Getenv("CONGRU_LOG_LEVEL"))
	defer log.Sync()
	log = log.Named("analyst")

	itemDim := envUint32("CONGRU_SIZE", 1024)
	st := congru.NewStructure(congru.Ob(itemDim))
	sig := st.Signature()
	sig.DeclareBinaryFunction("APP")
	sig.DeclareBinaryRelation("LESS")
	sig.DeclareBinaryRelation("NLESS")
	sig.DeclareNegation("LESS", "NLESS")
	simp := congru.NewSimplifier(sig, nil)

	addr := os.Getenv("CONGRU_LISTEN")
	if addr == "" {
		addr = "127.0.0.1:7890"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen failed", zap.Error(err))
		os.Exit(1)
	}
	defer ln.Close()
	log.Info("listening", zap.String("addr", addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Error("accept failed", zap.Error(err))
			continue
		}
		go handleConn(conn, st, simp, log)
	}
}

func handleConn(conn net.Conn, st *congru.Structure, simp *congru.Simplifier, log *zap.Logger) {
	defer conn.Close()
	for {
		var req wireproto.Request
		if err := wireproto.ReadFrame(conn, &req); err != nil {
			return
		}
		resp := dispatch(req, st, simp)
		if err := wireproto.WriteFrame(conn, resp); err != nil {
			log.Warn("write response failed", zap.Error(err))
			return
		}
	}
}

func dispatch(req wireproto.Request, st *congru.Structure, simp *congru.Simplifier) wireproto.Response {
	switch req.Kind {
	case "simplify":
		route := simp.Simplify(req.Expr)
		var errs []string
		for _, e := range simp.Errors {
			errs = append(errs, e.Error())
		}
		return wireproto.Response{Route: route, Errors: errs}
	case "validate":
		var errs []string
		valid := true
		if err := st.ValidateConsistent(); err != nil {
			valid = false
			errs = append(errs, err.Error())
		}
		if req.Strict {
			if err := st.Validate(); err != nil {
				valid = false
				errs = append(errs, err.Error())
			}
		}
		return wireproto.Response{Valid: valid, Errors: errs}
	default:
		return wireproto.Response{Errors: []string{"unknown request kind: " + req.Kind}}
	}
}

func buildLogger(level string) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zap.Must(cfg.Build())
}

func envUint32(name string, def uint32) uint32 {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def
	}
	return uint32(n)
}
