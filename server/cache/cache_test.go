package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/spektr-org/incomelens/engine"
)

// TestCache_New tests cache creation.
func TestCache_New(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)
	if c == nil {
		t.Fatal("New() returned nil")
	}
	if c.store == nil {
		t.Error("cache store not initialized")
	}
}

// TestCache_BasicOperations tests Get, Set, and Delete.
func TestCache_BasicOperations(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)

	t.Run("Set and Get", func(t *testing.T) {
		c.Set("key1", "value1")

		val, found := c.Get("key1")
		if !found {
			t.Error("expected key1 to be found")
		}
		if val != "value1" {
			t.Errorf("expected value1, got %v", val)
		}
	})

	t.Run("Missing key", func(t *testing.T) {
		if _, found := c.Get("key2"); found {
			t.Error("expected key2 to be missing")
		}
	})

	t.Run("ItemCount", func(t *testing.T) {
		c.Set("key3", "value3")
		if c.ItemCount() != 2 {
			t.Errorf("expected 2 items, got %d", c.ItemCount())
		}
	})
}

func TestCache_Expiration(t *testing.T) {
	c := New(10*time.Millisecond, time.Minute)
	c.Set("short", "v")

	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get("short"); found {
		t.Error("expected entry to expire")
	}
}

func TestRequestKey(t *testing.T) {
	a := engine.Request{Option: engine.OptionCustom, Custom: engine.DefaultCustomSelection()}
	b := engine.Request{Option: engine.OptionCustom, Custom: engine.DefaultCustomSelection()}

	if RequestKey(a) != RequestKey(b) {
		t.Error("equal requests should share a key")
	}

	b.Custom.Rotation = 30
	if RequestKey(a) == RequestKey(b) {
		t.Error("different requests should not share a key")
	}
}

func TestCache_TypedEntries(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)

	res := &engine.Result{Option: engine.OptionData}
	c.SetResult("k", res)
	got, ok := c.GetResult("k")
	if !ok || got != res {
		t.Fatalf("GetResult = %v, %v", got, ok)
	}

	c.SetImage("k/0", []byte{1, 2, 3})
	img, ok := c.GetImage("k/0")
	if !ok || len(img) != 3 {
		t.Fatalf("GetImage = %v, %v", img, ok)
	}

	// Results and images live in separate key spaces.
	if _, ok := c.GetImage("k"); ok {
		t.Error("result key should not resolve as an image")
	}
}

// TestCache_Concurrency tests concurrent access.
func TestCache_Concurrency(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.SetImage("img", []byte{byte(n)})
			c.GetImage("img")
		}(i)
	}
	wg.Wait()

	if _, ok := c.GetImage("img"); !ok {
		t.Error("expected image after concurrent writes")
	}
}
