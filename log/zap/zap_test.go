package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/gpucache"
)

func TestFieldsAreSortedAndErrorsNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Warn("decode failed", gpucache.Fields{"type": "ShaderModule", "err": errors.New("bad"), "key": "ab12"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e.LoggerName != "gpucache" || e.Level != zapcore.WarnLevel {
		t.Fatalf("entry = %+v", e.Entry)
	}
	var keys []string
	for _, f := range e.Context {
		keys = append(keys, f.Key)
	}
	if len(keys) != 3 || keys[0] != "err" || keys[1] != "key" || keys[2] != "type" {
		t.Fatalf("keys = %v", keys)
	}
	if e.ContextMap()["err"] != "bad" {
		t.Fatalf("err field = %v", e.ContextMap()["err"])
	}
}
