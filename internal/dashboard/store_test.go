package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func fireEntry(t *testing.T, ls *logStore, level logrus.Level, msg string, data logrus.Fields) {
	t.Helper()
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Now(),
		Level:   level,
		Message: msg,
		Data:    data,
	}
	if err := ls.Fire(entry); err != nil {
		t.Fatalf("Fire failed: %v", err)
	}
}

func TestLogStoreCapturesEntries(t *testing.T) {
	ls := newLogStore(10)
	fireEntry(t, ls, logrus.ErrorLevel, "boom", logrus.Fields{
		"component": "runner",
		"err":       errors.New("kaput"),
	})

	got := ls.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Level != "error" || got[0].Message != "boom" || got[0].Component != "runner" {
		t.Errorf("unexpected record: %+v", got[0])
	}
	if got[0].Fields["err"] != "kaput" {
		t.Errorf("error field should be stringified, got %v", got[0].Fields)
	}
}

func TestLogStoreBounded(t *testing.T) {
	ls := newLogStore(3)
	for i := 0; i < 5; i++ {
		fireEntry(t, ls, logrus.InfoLevel, string(rune('a'+i)), nil)
	}
	got := ls.snapshot()
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].Message != "c" || got[2].Message != "e" {
		t.Errorf("should keep the most recent entries: %+v", got)
	}
}

func TestLogStoreClose(t *testing.T) {
	ls := newLogStore(10)
	ls.close()
	fireEntry(t, ls, logrus.InfoLevel, "after close", nil)
	if len(ls.snapshot()) != 0 {
		t.Error("closed store should drop entries")
	}
}
