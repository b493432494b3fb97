package feed

import (
	"testing"

	signalDomain "trade-signals/internal/domain/signal"
)

func sig(id string, status signalDomain.Status) signalDomain.Signal {
	return signalDomain.Signal{ID: id, Pair: "XAUUSD", Status: status}
}

func added(id string, status signalDomain.Status) Change {
	return Change{Tag: TagAdded, Record: sig(id, status)}
}

func modified(id string, status signalDomain.Status) Change {
	return Change{Tag: TagModified, Record: sig(id, status)}
}

func TestClassifier_HydrationSuppressesAlerts(t *testing.T) {
	c := NewClassifier()
	batch := Batch{Changes: []Change{
		added("s1", signalDomain.StatusActive),
		added("s2", signalDomain.StatusActive),
		added("s3", signalDomain.StatusTarget1),
	}}

	if alerts := c.Apply(batch); len(alerts) != 0 {
		t.Fatalf("hydration batch must not alert, got %d", len(alerts))
	}
	if !c.Hydrated() {
		t.Fatal("expected hydrated after first batch")
	}
}

func TestClassifier_ReplayedHydrationNeverAlerts(t *testing.T) {
	batch := Batch{Changes: []Change{
		added("s1", signalDomain.StatusActive),
		added("s2", signalDomain.StatusActive),
	}}
	// 兩次獨立的全新訂閱，各自的首批都不可提示。
	for i := 0; i < 2; i++ {
		c := NewClassifier()
		if alerts := c.Apply(batch); len(alerts) != 0 {
			t.Fatalf("pass %d: hydration must not alert", i+1)
		}
	}
}

func TestClassifier_StatusChangeAfterHydration(t *testing.T) {
	c := NewClassifier()
	c.Apply(Batch{Changes: []Change{
		added("s1", signalDomain.StatusActive),
		added("s2", signalDomain.StatusActive),
		added("s3", signalDomain.StatusActive),
	}})

	alerts := c.Apply(Batch{Changes: []Change{modified("s2", signalDomain.StatusTarget1)}})
	if len(alerts) != 1 {
		t.Fatalf("expected exactly 1 alert, got %d", len(alerts))
	}
	if alerts[0].Kind != AlertStatusChange || alerts[0].Signal.ID != "s2" {
		t.Fatalf("unexpected alert: %+v", alerts[0])
	}
}

func TestClassifier_NewSignalAfterHydration(t *testing.T) {
	c := NewClassifier()
	c.Apply(Batch{Changes: []Change{added("s1", signalDomain.StatusActive)}})

	alerts := c.Apply(Batch{Changes: []Change{added("s2", signalDomain.StatusActive)}})
	if len(alerts) != 1 || alerts[0].Kind != AlertNewSignal {
		t.Fatalf("expected one new-signal alert, got %+v", alerts)
	}
}

func TestClassifier_IgnorableChanges(t *testing.T) {
	c := NewClassifier()
	c.Apply(Batch{Changes: []Change{added("s1", signalDomain.StatusActive)}})

	cases := []Change{
		modified("s1", signalDomain.StatusActive),  // 非 meaningful 狀態
		modified("s1", signalDomain.StatusClosed),  // 終態不提示
		modified("s1", signalDomain.StatusStopped), // 終態不提示
		added("s1", signalDomain.StatusActive),     // 已知 id 重送 added
		{Tag: TagRemoved, Record: sig("s1", signalDomain.StatusActive)},
	}
	for _, ch := range cases {
		if alerts := c.Apply(Batch{Changes: []Change{ch}}); len(alerts) != 0 {
			t.Fatalf("change %v should be ignorable, got %+v", ch.Tag, alerts)
		}
	}
}

func TestClassifier_RepeatedStatusNotReAlerted(t *testing.T) {
	c := NewClassifier()
	c.Apply(Batch{Changes: []Change{added("s1", signalDomain.StatusActive)}})

	if alerts := c.Apply(Batch{Changes: []Change{modified("s1", signalDomain.StatusTarget1)}}); len(alerts) != 1 {
		t.Fatalf("expected first TP1 to alert, got %d", len(alerts))
	}
	// 同狀態的重複 modified（例如其他欄位更新）不再提示。
	if alerts := c.Apply(Batch{Changes: []Change{modified("s1", signalDomain.StatusTarget1)}}); len(alerts) != 0 {
		t.Fatalf("repeated TP1 must be ignorable, got %+v", alerts)
	}
}

func TestClassifier_ClassifiesAgainstPreviousSnapshot(t *testing.T) {
	c := NewClassifier()
	c.Apply(Batch{Changes: []Change{added("s1", signalDomain.StatusActive)}})

	// 同一批內先後兩筆：分類須比對前一份快照，兩筆都相對於批前狀態判斷。
	alerts := c.Apply(Batch{Changes: []Change{
		modified("s1", signalDomain.StatusBreakEven),
		modified("s1", signalDomain.StatusTarget1),
	}})
	if len(alerts) != 2 {
		t.Fatalf("expected both moves in one batch to alert, got %d", len(alerts))
	}
}

func TestClassifier_ResetReentersHydration(t *testing.T) {
	c := NewClassifier()
	c.Apply(Batch{Changes: []Change{added("s1", signalDomain.StatusActive)}})

	c.Reset()
	// 重連後 feed 會重送完整現況；即使內容與斷線前相同也不可提示。
	if alerts := c.Apply(Batch{Changes: []Change{added("s1", signalDomain.StatusActive)}}); len(alerts) != 0 {
		t.Fatalf("post-reconnect hydration must not alert, got %+v", alerts)
	}
}
