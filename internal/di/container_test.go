package di

import "testing"

type counter struct{ n int }

func TestContainer_FactoryRunsOnce(t *testing.T) {
	c := NewContainer()
	token := NewToken[*counter]("test.counter")

	calls := 0
	RegisterToken(c, token, func(ServiceRegistry) *counter {
		calls++
		return &counter{n: calls}
	})

	first := GetToken(c, token)
	second := GetToken(c, token)

	if first != second {
		t.Error("expected the same instance on every resolution")
	}
	if calls != 1 {
		t.Errorf("expected factory to run once, ran %d times", calls)
	}
}

func TestContainer_FactoryResolvesDependencies(t *testing.T) {
	c := NewContainer()
	c.Register("base", 41)

	token := NewToken[int]("test.derived")
	RegisterToken(c, token, func(sr ServiceRegistry) int {
		return sr.Get("base").(int) + 1
	})

	if got := GetToken(c, token); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestContainer_MissingServicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unregistered service")
		}
	}()

	NewContainer().Get("missing")
}
