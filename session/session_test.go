package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeClient struct {
	id string
}

func (f *fakeClient) ID() string { return f.id }

func (f *fakeClient) Emit(event string, args ...interface{}) error { return nil }

func TestStartsWithDefaultPortAndNoClient(t *testing.T) {
	s := New(12000)
	_, ok := s.Client()

	assert := assert.New(t)
	assert.Equal(12000, s.Port())
	assert.False(ok)
}

func TestLastConnectedWins(t *testing.T) {
	s := New(12000)
	s.SetClient(&fakeClient{id: "a"})
	s.SetClient(&fakeClient{id: "b"})

	c, ok := s.Client()
	assert := assert.New(t)
	assert.True(ok)
	assert.Equal("b", c.ID())
}

func TestSetPort(t *testing.T) {
	s := New(12000)
	s.SetPort(12500)
	s.SetPort(12500)
	assert.Equal(t, 12500, s.Port())
}

func TestConcurrentAccess(t *testing.T) {
	s := New(12000)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.SetPort(12000 + i)
			s.SetClient(&fakeClient{id: "c"})
		}(i)
		go func() {
			defer wg.Done()
			s.Port()
			s.Client()
		}()
	}
	wg.Wait()

	c, ok := s.Client()
	assert.True(t, ok)
	assert.Equal(t, "c", c.ID())
}
