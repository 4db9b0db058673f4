package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinIsIdempotent(t *testing.T) {
	r := NewRegistry()

	r.Join("c1", "public")
	r.Join("c1", "public")

	assert.Equal(t, []string{"c1"}, r.Members("public"))
	assert.Equal(t, []string{"public"}, r.JoinedRooms("c1"))
}

func TestJoinMovesBetweenRooms(t *testing.T) {
	r := NewRegistry()

	r.Join("c1", "public")
	r.Join("c1", "general")

	assert.Empty(t, r.Members("public"))
	assert.Equal(t, []string{"c1"}, r.Members("general"))

	current, ok := r.CurrentRoom("c1")
	require.True(t, ok)
	assert.Equal(t, "general", current)
}

func TestJoinedRoomsGrowsInJoinOrderWithoutDuplicates(t *testing.T) {
	r := NewRegistry()

	r.Join("c1", "public")
	r.Join("c1", "general")
	r.Join("c1", "public")
	r.Join("c1", "dev")

	assert.Equal(t, []string{"public", "general", "dev"}, r.JoinedRooms("c1"))
}

func TestLeaveForgetsConnection(t *testing.T) {
	r := NewRegistry()

	r.Join("c1", "public")
	r.Leave("c1")

	assert.Empty(t, r.Members("public"))
	_, ok := r.CurrentRoom("c1")
	assert.False(t, ok)
	assert.Nil(t, r.JoinedRooms("c1"))
}

func TestConnectionNeverInTwoRooms(t *testing.T) {
	r := NewRegistry()
	rooms := []string{"a", "b", "c"}

	r.Join("c1", "a")
	for i := 0; i < 50; i++ {
		r.Join("c1", rooms[i%len(rooms)])

		occupied := 0
		for _, room := range rooms {
			for _, member := range r.Members(room) {
				if member == "c1" {
					occupied++
				}
			}
		}
		assert.Equal(t, 1, occupied)
	}
}

func TestConcurrentJoinsOnSameConnection(t *testing.T) {
	r := NewRegistry()
	rooms := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(room string) {
			defer wg.Done()
			r.Join("c1", room)
		}(rooms[i%len(rooms)])
	}
	wg.Wait()

	occupied := 0
	for _, room := range rooms {
		for _, member := range r.Members(room) {
			if member == "c1" {
				occupied++
			}
		}
	}
	assert.Equal(t, 1, occupied)
}

func TestConcurrentJoinsByDifferentConnections(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r.Join(fmt.Sprintf("c%d", n), "public")
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.Members("public"), 50)
}
