// pkg/diskstate/diskstate_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test disk state comparison and the stable tuple encoding

package diskstate_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/diskstate"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/gamepath"
	"github.com/arthur-debert/modsync/pkg/pathtree"
)

var mtime = time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC)

func state(entries map[string]diskstate.Entry) *diskstate.State {
	list := make([]pathtree.Entry[diskstate.Entry], 0, len(entries))
	for s, e := range entries {
		p, err := gamepath.Parse(s)
		if err != nil {
			panic(err)
		}
		list = append(list, pathtree.Entry[diskstate.Entry]{Path: p, Value: e})
	}
	return diskstate.New("L1", 3, pathtree.New(list))
}

func TestMarshalIsStable(t *testing.T) {
	s := state(map[string]diskstate.Entry{
		"{Saves}/b.sav":  {Hash: 0xbb, Size: 2, LastModified: mtime},
		"{Game}/z.txt":   {Hash: 0xdd, Size: 4, LastModified: mtime},
		"{Game}/A/b.txt": {Hash: 0xaa, Size: 1, LastModified: mtime},
		"{Game}/a.txt":   {Hash: 0xcc, Size: 3, LastModified: mtime},
	})

	data, err := diskstate.Marshal(s)
	require.NoError(t, err)

	ticks := mtime.UnixNano()
	want := `{"loadout":"L1","revision":3,"entries":[` +
		`["Game","A/b.txt","00000000000000aa",1,` + itoa(ticks) + `],` +
		`["Game","a.txt","00000000000000cc",3,` + itoa(ticks) + `],` +
		`["Game","z.txt","00000000000000dd",4,` + itoa(ticks) + `],` +
		`["Saves","b.sav","00000000000000bb",2,` + itoa(ticks) + `]]}`
	assert.Equal(t, want, string(data))

	back, err := diskstate.Unmarshal(data, gamepath.CaseSensitive)
	require.NoError(t, err)
	assert.Equal(t, s.Loadout, back.Loadout)
	assert.Equal(t, s.Revision, back.Revision)
	assert.True(t, s.ContentEqual(back))

	e, ok := back.Get(gamepath.MustNew(gamepath.Game, "a.txt"))
	require.True(t, ok)
	assert.True(t, e.LastModified.Equal(mtime))

	again, err := diskstate.Marshal(back)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestUnmarshalRejectsBadTuples(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"short", `{"loadout":"L","revision":1,"entries":[["Game","a"]]}`},
		{"bad_hash", `{"loadout":"L","revision":1,"entries":[["Game","a","zz",1,0]]}`},
		{"escaping_path", `{"loadout":"L","revision":1,"entries":[["Game","../a","00",1,0]]}`},
		{"not_json", `nope`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := diskstate.Unmarshal([]byte(tt.data), gamepath.CaseSensitive)
			assert.Error(t, err)
		})
	}

	_, err := diskstate.Unmarshal([]byte(`nope`), gamepath.CaseSensitive)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestContentEqual(t *testing.T) {
	a := state(map[string]diskstate.Entry{"{Game}/a": {Hash: 1, Size: 1, LastModified: mtime}})
	sameButTouched := state(map[string]diskstate.Entry{"{Game}/a": {Hash: 1, Size: 1, LastModified: mtime.Add(time.Hour)}})
	changed := state(map[string]diskstate.Entry{"{Game}/a": {Hash: 2, Size: 1}})
	extra := state(map[string]diskstate.Entry{
		"{Game}/a": {Hash: 1, Size: 1},
		"{Game}/b": {Hash: 1, Size: 1},
	})

	assert.True(t, a.ContentEqual(sameButTouched))
	assert.False(t, a.ContentEqual(changed))
	assert.False(t, a.ContentEqual(extra))
	assert.Equal(t, int64(2), extra.TotalSize())
}

func TestEmpty(t *testing.T) {
	s := diskstate.Empty("L", 0, gamepath.CaseInsensitive)
	assert.Zero(t, s.Len())
	assert.Equal(t, gamepath.CaseInsensitive, s.Tree.Case())
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
