package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Total(t *testing.T) {
	assert.Equal(t, int(Count)-1, Total())
	assert.Equal(t, []ID{MainMenu, Level1}, All())
}

func TestID_Valid(t *testing.T) {
	assert.False(t, None.Valid())
	assert.True(t, MainMenu.Valid())
	assert.True(t, Level1.Valid())
	assert.False(t, Count.Valid())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{in: "Level1", want: Level1},
		{in: "mainmenu", want: MainMenu},
		{in: "  LEVEL1 ", want: Level1},
		{in: "None", wantErr: true},
		{in: "Count", wantErr: true},
		{in: "Level9", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestID_TextRoundTrip(t *testing.T) {
	var id ID
	require.NoError(t, id.UnmarshalText([]byte("Level1")))
	assert.Equal(t, Level1, id)

	text, err := MainMenu.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "MainMenu", string(text))

	assert.Equal(t, "ID(42)", ID(42).String())
}

func TestNewCatalog(t *testing.T) {
	cat, err := NewCatalog([]Asset{
		{ID: Level1, Level: true},
		{ID: MainMenu},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	a, err := cat.Asset(Level1)
	require.NoError(t, err)
	assert.True(t, a.Level)

	_, err = cat.Asset(None)
	assert.Error(t, err)
}

func TestNewCatalog_CountMismatch(t *testing.T) {
	_, err := NewCatalog([]Asset{{ID: MainMenu}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loaded 1 scene assets, want 2")
}

func TestNewCatalog_DuplicateID(t *testing.T) {
	_, err := NewCatalog([]Asset{{ID: MainMenu}, {ID: MainMenu}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want Level1")
}
