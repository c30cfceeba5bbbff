package port

import (
	"net"
	"testing"

	"github.com/firefly-engineering/grove/internal/config"
)

func allFree(int) bool { return true }

func TestAllocate_Empty(t *testing.T) {
	p, err := Allocate(config.PortRange{Start: 3000, End: 3010}, nil, allFree)
	if err != nil {
		t.Fatalf("Allocate error: %v", err)
	}
	if p != 3000 {
		t.Errorf("port = %d, want 3000", p)
	}
}

func TestAllocate_SkipsRecorded(t *testing.T) {
	used := map[int]string{3000: "auth", 3001: "billing"}

	p, err := Allocate(config.PortRange{Start: 3000, End: 3010}, used, allFree)
	if err != nil {
		t.Fatalf("Allocate error: %v", err)
	}
	if p != 3002 {
		t.Errorf("port = %d, want 3002", p)
	}
}

func TestAllocate_GapInPorts(t *testing.T) {
	used := map[int]string{3000: "a", 3002: "c"}

	p, err := Allocate(config.PortRange{Start: 3000, End: 3010}, used, allFree)
	if err != nil {
		t.Fatalf("Allocate error: %v", err)
	}
	if p != 3001 {
		t.Errorf("port = %d, want 3001 (first gap)", p)
	}
}

func TestAllocate_SkipsBound(t *testing.T) {
	bound := map[int]bool{3000: true, 3001: true}
	free := func(p int) bool { return !bound[p] }

	p, err := Allocate(config.PortRange{Start: 3000, End: 3010}, nil, free)
	if err != nil {
		t.Fatalf("Allocate error: %v", err)
	}
	if p != 3002 {
		t.Errorf("port = %d, want 3002", p)
	}
}

func TestAllocate_Exhausted(t *testing.T) {
	used := map[int]string{3000: "a", 3001: "b"}

	_, err := Allocate(config.PortRange{Start: 3000, End: 3001}, used, allFree)
	if err == nil {
		t.Error("expected error when range is exhausted")
	}
}

func TestListenCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	defer ln.Close()

	taken := ln.Addr().(*net.TCPAddr).Port
	if ListenCheck(taken) {
		t.Errorf("port %d is bound but reported free", taken)
	}
}
