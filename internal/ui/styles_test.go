package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageHelpersKeepPrefixAndText(t *testing.T) {
	tests := []struct {
		name   string
		got    string
		prefix string
		text   string
	}{
		{"success", Success("done"), "✓", "done"},
		{"warn", Warn("careful"), "⚠", "careful"},
		{"err", Err("failed"), "✗", "failed"},
		{"info", Info("note"), "ℹ", "note"},
		{"hint", Hint("run deploy"), "→", "run deploy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.got, tt.prefix)
			assert.Contains(t, tt.got, tt.text)
		})
	}
}

func TestFormattersKeepText(t *testing.T) {
	assert.Contains(t, Addr("0xABCDEF"), "0xABCDEF")
	assert.Contains(t, Val("100 SPRING"), "100 SPRING")
	assert.Contains(t, Meta("chain 1337"), "chain 1337")
	assert.Contains(t, ChainName("dappchain"), "dappchain")
}

func TestBannerShowsVersion(t *testing.T) {
	b := Banner("v0.3.0")
	assert.Contains(t, b, "springbridge")
	assert.Contains(t, b, "v0.3.0")
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "0x7099…79C8", TruncateAddr("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"))
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
	assert.Equal(t, "", TruncateAddr(""))
}
