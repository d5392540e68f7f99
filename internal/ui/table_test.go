package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	result := KeyValueBlock("Mainnet deployment", [][2]string{
		{"Gateway", "0x5FbDB2315678afecb367f032d93F642f64180aa3"},
		{"Chain ID", "1337"},
	})
	assert.Contains(t, result, "Mainnet deployment")
	assert.Contains(t, result, "Gateway")
	assert.Contains(t, result, "0x5FbDB2315678afecb367f032d93F642f64180aa3")
	assert.Contains(t, result, "1337")
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	result := KeyValueBlock("", [][2]string{{"First", "1"}, {"Second", "2"}, {"Third", "3"}})
	first := strings.Index(result, "First")
	second := strings.Index(result, "Second")
	third := strings.Index(result, "Third")
	assert.True(t, first < second && second < third)
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	result := KeyValueBlock("Bordered", [][2]string{{"k", "v"}})
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╯")
}

func TestTableRenderHeadersDividerAndRows(t *testing.T) {
	tbl := NewTable(Column{Title: "Name"}, Column{Title: "Value"})
	tbl.AddRow("gateway_address", "0x5FbD")
	tbl.AddRow("game_token_address", "0xe7f1")

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[0], "Value")
	assert.Contains(t, lines[1], strings.Repeat("-", len("game_token_address")))
	assert.Contains(t, lines[2], "gateway_address")
	assert.Contains(t, lines[3], "game_token_address")
}

func TestTableFixedWidthTruncates(t *testing.T) {
	tbl := NewTable(Column{Title: "Addr", Width: 6})
	tbl.AddRow("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	out := tbl.Render()
	assert.Contains(t, out, "0x7099")
	assert.NotContains(t, out, "0x70997")
}

func TestTableShortRowIsPadded(t *testing.T) {
	tbl := NewTable(Column{Title: "A"}, Column{Title: "B"})
	tbl.AddRow("only")
	assert.Contains(t, tbl.Render(), "only")
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab   ", pad("ab", 5))
	assert.Equal(t, "abc", pad("abc", 3))
	assert.Equal(t, "ab", pad("abcdef", 2))
	assert.Equal(t, "", pad("", 0))
	assert.Equal(t, "0x12…", pad("0x12…", 5))
}
