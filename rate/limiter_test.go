package rate

import (
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	burst := 1

	interval := 10 * time.Millisecond
	lim := Every(interval)
	r := NewLimiter(burst, 100, lim)

	tooshort := 1 * time.Millisecond

	client := "test@test.com"
	expected := []bool{true, false, true, true, false, false}
	waits := []time.Duration{tooshort, interval, interval, tooshort, tooshort, tooshort}
	for i, exp := range expected {
		if got := r.Check(client); got != exp {
			t.Fatalf("iteration %d: expected %v, but got %v", i, exp, got)
		}
		time.Sleep(waits[i])
	}
}

func TestLimiterIndependentClients(t *testing.T) {
	burst := 1
	lim := Every(time.Minute)
	r := NewLimiter(burst, 100, lim)

	if got := r.Check("first@test.com"); !got {
		t.Fatal("first client should be allowed its burst")
	}
	if got := r.Check("first@test.com"); got {
		t.Fatal("first client should be throttled after its burst")
	}
	if got := r.Check("second@test.com"); !got {
		t.Fatal("second client must not be throttled by the first")
	}
}

func TestLimiterWithBurst(t *testing.T) {
	client := "test@test.com"
	burst := 3

	interval := 50 * time.Millisecond
	lim := Every(interval)
	r := NewLimiter(burst, 100, lim)

	for i := 0; i < burst; i++ {
		if got := r.Check(client); !got {
			t.Fatalf("attempt %d within burst should be allowed", i)
		}
	}
	if got := r.Check(client); got {
		t.Fatal("attempt beyond burst should be throttled")
	}

	time.Sleep(interval + 10*time.Millisecond)
	if got := r.Check(client); !got {
		t.Fatal("attempt after refill interval should be allowed")
	}
}
