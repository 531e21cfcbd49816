package log2

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog2(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		fun  func(t testing.TB, l *Log) string
	}{
		{"caller/debug", func(t testing.TB, l *Log) string {
			l.SetFlags(log.Lshortfile)
			l.Debugf("low level var=%d", 42)
			return formatCallerShort(1) + "debug: low level var=42\n"
		}},
		{"caller/info", func(t testing.TB, l *Log) string {
			l.SetFlags(log.Lshortfile)
			l.Infof("regular state=%s", "ok")
			return formatCallerShort(1) + "regular state=ok\n"
		}},
		{"caller/error", func(t testing.TB, l *Log) string {
			l.SetFlags(log.Lshortfile)
			l.Errorf("problem")
			return formatCallerShort(1) + "error: problem\n"
		}},
		{"printf", func(t testing.TB, l *Log) string {
			l.SetFlags(0)
			l.Printf("[client] %s", "connected")
			return "[client] connected\n"
		}},
		{"println", func(t testing.TB, l *Log) string {
			l.SetFlags(0)
			l.Println("[net]", "lost")
			return "[net] lost\n"
		}},
		{"level/skip-debug", func(t testing.TB, l *Log) string {
			l.SetFlags(0)
			l.SetLevel(LInfo)
			l.Debugf("hidden")
			l.Info("shown")
			return "shown\n"
		}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name+"/logger=nil", func(t *testing.T) {
			c.fun(t, nil)
		})
		t.Run(c.name, func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			l := NewWriter(buf, LAll)
			expect := c.fun(t, l)
			assert.Equal(t, expect, buf.String())
		})
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	buf := bytes.NewBuffer(nil)
	l := NewWriter(buf, LError)
	l.SetFlags(0)
	l.SetPrefix("lcd: ")
	c := l.Clone(LDebug)
	c.Debugf("x=%d", 1)
	l.Debugf("x=%d", 2)
	assert.Equal(t, "lcd: debug: x=1\n", buf.String())
	assert.True(t, c.Enabled(LDebug))
	assert.False(t, l.Enabled(LDebug))
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	l := NewWriter(io.Discard, LAll)
	assert.Nil(t, l)
	assert.False(t, l.Enabled(LError))
	l.Errorf("goes nowhere")
}

func TestFatalTest(t *testing.T) {
	t.Parallel()

	var got string
	l := NewFunc(func(format string, args ...interface{}) {}, LAll)
	l.fatalf = func(format string, args ...interface{}) { got = fmt.Sprintf(format, args...) }
	l.Fatalf("config invalid key=%s", "cron")
	assert.Equal(t, "config invalid key=cron", got)
}

func callerShort(depth int) (file string, line int) {
	var ok bool
	_, file, line, ok = runtime.Caller(depth)
	if !ok {
		file = "???"
		line = 0
	}

	short := file
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			short = file[i+1:]
			break
		}
	}
	file = short

	return
}

func formatCallerShort(depth int) string {
	file, line := callerShort(depth + 1)
	return fmt.Sprintf("%s:%d: ", file, line-1)
}
