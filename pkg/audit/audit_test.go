package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func TestLog_AppendChainsEntries(t *testing.T) {
	clock := fixedClock{t: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)}
	log := NewLog(clock)

	e1, err := log.Append("agent_1", "GOV_ALLOW", "act_1", "")
	require.NoError(t, err)
	assert.Empty(t, e1.PreviousHash)

	e2, err := log.Append("agent_1", "ATTESTED", "act_1", "")
	require.NoError(t, err)
	assert.Equal(t, e1.Hash, e2.PreviousHash)
}

func TestLog_VerifyChain_DetectsTamper(t *testing.T) {
	clock := fixedClock{t: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)}
	log := NewLog(clock)

	_, err := log.Append("agent_1", "GOV_ALLOW", "act_1", "")
	require.NoError(t, err)
	_, err = log.Append("agent_1", "ATTESTED", "act_1", "")
	require.NoError(t, err)

	ok, err := log.VerifyChain()
	require.NoError(t, err)
	assert.True(t, ok)

	log.Entries[0].Action = "GOV_DENY"
	ok, err = log.VerifyChain()
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestLog_EmptyChainVerifies(t *testing.T) {
	log := NewLog(nil)
	ok, err := log.VerifyChain()
	require.NoError(t, err)
	assert.True(t, ok)
}
