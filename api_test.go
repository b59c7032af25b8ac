package webrtc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAPIDefaultsToEmptyMediaEngine(t *testing.T) {
	api := NewAPI()
	assert.NotNil(t, api.mediaEngine)
	assert.Empty(t, api.mediaEngine.getCodecsByKind(RTPCodecTypeVideo))
}

func TestWithMediaEngineInstallsProvidedEngine(t *testing.T) {
	m := &MediaEngine{}
	assert.NoError(t, m.RegisterDefaultCodecs())

	api := NewAPI(WithMediaEngine(m))
	assert.Same(t, m, api.mediaEngine)
	assert.NotEmpty(t, api.mediaEngine.getCodecsByKind(RTPCodecTypeVideo))
}

func TestWithSettingEngineInstallsProvidedSettings(t *testing.T) {
	var settings SettingEngine
	settings.SetNACKMaxCount(9)

	api := NewAPI(WithSettingEngine(settings))
	assert.EqualValues(t, 9, api.settingEngine.nackMaxCount)
}
