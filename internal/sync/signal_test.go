package sync

import (
	"context"
	"testing"
)

func TestGuardAppliesNewerTimestamps(t *testing.T) {
	g := NewGuard()

	s1 := Signal{Type: TypeGroupsChanged, UserID: "u1", WorkspaceID: "w1", Timestamp: 100}
	s2 := Signal{Type: TypeGroupsChanged, UserID: "u1", WorkspaceID: "w1", Timestamp: 200}

	if !g.Apply(s1) {
		t.Error("first signal should apply")
	}
	if !g.Apply(s2) {
		t.Error("newer signal should apply")
	}
}

func TestGuardDropsStaleAndDuplicate(t *testing.T) {
	g := NewGuard()

	s1 := Signal{Type: TypeSelectedGroup, UserID: "u1", WorkspaceID: "w1", Timestamp: 100, Value: "g1"}
	s2 := Signal{Type: TypeSelectedGroup, UserID: "u1", WorkspaceID: "w1", Timestamp: 200, Value: "g2"}

	if !g.Apply(s2) {
		t.Fatal("newer signal should apply")
	}
	if g.Apply(s1) {
		t.Error("stale signal must be a no-op after a newer one applied")
	}
	if g.Apply(s2) {
		t.Error("duplicate signal must be a no-op")
	}
}

func TestGuardOutOfOrderDeliveryConverges(t *testing.T) {
	// Regardless of delivery order, the effect applied is the one with
	// the greater timestamp.
	s1 := Signal{Type: TypeSelectedGroup, UserID: "u1", WorkspaceID: "w1", Timestamp: 100, Value: "old"}
	s2 := Signal{Type: TypeSelectedGroup, UserID: "u1", WorkspaceID: "w1", Timestamp: 200, Value: "new"}

	for _, order := range [][]Signal{{s1, s2}, {s2, s1}} {
		g := NewGuard()
		var applied string
		for _, s := range order {
			if g.Apply(s) {
				applied = s.Value
			}
		}
		if applied != "new" {
			t.Errorf("delivery order %v applied %q, want new", order, applied)
		}
	}
}

func TestGuardChannelsAreIndependent(t *testing.T) {
	g := NewGuard()

	a := Signal{Type: TypeGroupsChanged, UserID: "u1", WorkspaceID: "w1", Timestamp: 200}
	b := Signal{Type: TypeSelectedGroup, UserID: "u1", WorkspaceID: "w1", Timestamp: 100}
	c := Signal{Type: TypeGroupsChanged, UserID: "u1", WorkspaceID: "w2", Timestamp: 100}

	if !g.Apply(a) {
		t.Error("a should apply")
	}
	if !g.Apply(b) {
		t.Error("different type must not share the guard watermark")
	}
	if !g.Apply(c) {
		t.Error("different scope must not share the guard watermark")
	}
}

func TestMemoryBusDelivers(t *testing.T) {
	bus := NewMemoryBus()

	var got []Signal
	unsub, err := bus.Subscribe(func(s Signal) { got = append(got, s) })
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	s := NewSignal(TypeGroupsChanged, "u1", "w1", "")
	if err := bus.Publish(context.Background(), s); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(got) != 1 || got[0].Type != TypeGroupsChanged {
		t.Fatalf("delivered = %+v, want one groups_changed", got)
	}

	unsub()
	if err := bus.Publish(context.Background(), s); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("handler still delivered after unsubscribe: %d", len(got))
	}
}

func TestGuardedHandler(t *testing.T) {
	bus := NewMemoryBus()
	g := NewGuard()

	var applied []string
	_, err := bus.Subscribe(Guarded(g, func(s Signal) { applied = append(applied, s.Value) }))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	ctx := context.Background()
	_ = bus.Publish(ctx, Signal{Type: TypeSelectedGroup, UserID: "u", WorkspaceID: "w", Timestamp: 2, Value: "new"})
	_ = bus.Publish(ctx, Signal{Type: TypeSelectedGroup, UserID: "u", WorkspaceID: "w", Timestamp: 1, Value: "old"})

	if len(applied) != 1 || applied[0] != "new" {
		t.Errorf("guarded handler applied %v, want [new]", applied)
	}
}

func TestNewSignalStampsTimestamp(t *testing.T) {
	s := NewSignal(TypeModeChanged, "u1", "w1", "remote")
	if s.Timestamp <= 0 {
		t.Errorf("NewSignal() timestamp = %d, want > 0", s.Timestamp)
	}
	if s.Value != "remote" {
		t.Errorf("NewSignal() value = %q", s.Value)
	}
}
