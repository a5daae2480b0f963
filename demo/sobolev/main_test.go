package main

import (
	"testing"

	"github.com/neilkichler/diff-ml/dmlsgd"
)

func TestNewTransformer(t *testing.T) {
	tr, err := newTransformer("momentum", 0.8)
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := tr.(*dmlsgd.Momentum); !ok || m.Momentum != 0.8 {
		t.Errorf("unexpected transformer: %#v", tr)
	}
	if tr, err := newTransformer("adam", 0); err != nil {
		t.Error(err)
	} else if _, ok := tr.(*dmlsgd.Adam); !ok {
		t.Errorf("unexpected transformer: %#v", tr)
	}
	if tr, err := newTransformer("sgd", 0); err != nil || tr != nil {
		t.Errorf("expected no transformer, got %#v (%v)", tr, err)
	}
	if _, err := newTransformer("lbfgs", 0); err == nil {
		t.Error("expected error for unknown optimizer")
	}
}
