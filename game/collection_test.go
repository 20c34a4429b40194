package game

import "testing"

func TestCollection(t *testing.T) {
	a := &Card{Index: 3}
	b := &Card{Index: 7}
	c := NewCollection()

	c.Add(a)
	c.Add(b)
	if c.Count() != 2 {
		t.Fatalf("expected 2 items, got %d", c.Count())
	}
	if c.Get(0) != a || c.Get(1) != b {
		t.Error("expected insertion order to be kept")
	}
	if idx := c.Indices(); idx[0] != 3 || idx[1] != 7 {
		t.Errorf("expected indices [3 7], got %v", idx)
	}

	items := c.Items()
	items[0] = nil
	if c.Get(0) != a {
		t.Error("Items should return a copy")
	}

	c.Remove(a)
	if c.Contains(a) || !c.Contains(b) || c.Count() != 1 {
		t.Error("Remove should drop only the given card")
	}
	c.Remove(a)

	c.Clear()
	if c.Count() != 0 {
		t.Errorf("expected empty collection after Clear, got %d", c.Count())
	}
}

type recordingEntity struct {
	name string
	log  *[]string
}

func (e recordingEntity) Create() { *e.log = append(*e.log, e.name+".create") }
func (e recordingEntity) Update() { *e.log = append(*e.log, e.name+".update") }

func TestGroupRunsInOrder(t *testing.T) {
	var log []string
	var g Group
	g.Add(recordingEntity{"board", &log})
	g.Add(recordingEntity{"score", &log})

	g.Create()
	g.Update()

	want := []string{"board.create", "score.create", "board.update", "score.update"}
	if g.Len() != 2 {
		t.Fatalf("expected 2 entities, got %d", g.Len())
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, log)
		}
	}
}

func TestScoreClampsAtZero(t *testing.T) {
	host := newRecordingHost()
	s := NewScore(host)
	s.Create()
	if host.labels[ScoreLabel] != "Score: 0" {
		t.Errorf("expected initial label, got %q", host.labels[ScoreLabel])
	}

	s.AddPoints(30)
	s.RemovePoints(25)
	if s.Points() != 5 {
		t.Errorf("expected 5, got %d", s.Points())
	}
	s.RemovePoints(25)
	if s.Points() != 0 {
		t.Errorf("expected score floored at 0, got %d", s.Points())
	}
	if host.labels[ScoreLabel] != "Score: 0" {
		t.Errorf("expected label to follow score, got %q", host.labels[ScoreLabel])
	}
}
