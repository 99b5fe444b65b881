package logrus

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/unkn0wn-root/gpucache"
)

func TestErrorFieldUsesWithError(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetOutput(io.Discard)
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Warn("provider get failed", gpucache.Fields{"err": errors.New("down"), "key": "blob:x"})

	e := hook.LastEntry()
	if e == nil || e.Level != logrus.WarnLevel {
		t.Fatalf("entry = %+v", e)
	}
	if err, _ := e.Data[logrus.ErrorKey].(error); err == nil || err.Error() != "down" {
		t.Fatalf("error field = %v", e.Data[logrus.ErrorKey])
	}
	if e.Data["key"] != "blob:x" || e.Data["component"] != "gpucache" {
		t.Fatalf("data = %v", e.Data)
	}
}
