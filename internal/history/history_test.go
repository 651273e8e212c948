package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lunachat/luna/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPreservesOrder(t *testing.T) {
	log := NewLog()
	log.Append(
		models.Turn{Role: models.RoleUser, Content: "hello", Timestamp: time.Now()},
		models.Turn{Role: models.RoleAssistant, Content: "hi there", Timestamp: time.Now()},
	)
	log.Append(models.Turn{Role: models.RoleUser, Content: "how are you", Timestamp: time.Now()})

	turns := log.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, "hi there", turns[1].Content)
	assert.Equal(t, "how are you", turns[2].Content)
}

func TestTurnsReturnsCopy(t *testing.T) {
	log := NewLog()
	log.Append(models.Turn{Role: models.RoleUser, Content: "original"})

	turns := log.Turns()
	turns[0].Content = "mutated"

	assert.Equal(t, "original", log.Turns()[0].Content)
}

func TestTurnsEmptyIsNotNil(t *testing.T) {
	assert.NotNil(t, NewLog().Turns())
}

func TestWindow(t *testing.T) {
	log := NewLog()
	for i := 0; i < 10; i++ {
		log.Append(models.Turn{Role: models.RoleUser, Content: fmt.Sprintf("turn %d", i)})
	}

	window := log.Window(6)
	require.Len(t, window, 6)
	assert.Equal(t, "turn 4", window[0].Content)
	assert.Equal(t, "turn 9", window[5].Content)

	assert.Len(t, log.Window(20), 10)
	assert.Empty(t, log.Window(0))
}

func TestClear(t *testing.T) {
	log := NewLog()
	log.Append(models.Turn{Role: models.RoleUser, Content: "x"})
	log.Clear()

	assert.Zero(t, log.Len())
	assert.Empty(t, log.Turns())
}

func TestConcurrentAppends(t *testing.T) {
	log := NewLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Append(
				models.Turn{Role: models.RoleUser, Content: "q"},
				models.Turn{Role: models.RoleAssistant, Content: "a"},
			)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, log.Len())
}
