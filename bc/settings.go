package bc

// BC6HSettings controls the BC6H encoder's mode search and refinement effort.
//
// SlowMode exhaustively tries every mode with no span-based skipping. FastMode
// prioritizes the high-throughput mode-1 path. FastSkipThreshold bounds how many
// two-subset partition candidates survive the PCA pre-sort, in [0,32].
type BC6HSettings struct {
	SlowMode           bool
	FastMode           bool
	RefineIterations1p uint32
	RefineIterations2p uint32
	FastSkipThreshold  uint32
}

// BC6HSettingsVeryFast returns the fastest BC6H tier: single-subset modes only,
// no refinement.
func BC6HSettingsVeryFast() BC6HSettings {
	return BC6HSettings{
		SlowMode:           false,
		FastMode:           true,
		FastSkipThreshold:  0,
		RefineIterations1p: 0,
		RefineIterations2p: 0,
	}
}

// BC6HSettingsFast returns a fast BC6H tier with a shallow partition search.
func BC6HSettingsFast() BC6HSettings {
	return BC6HSettings{
		SlowMode:           false,
		FastMode:           true,
		FastSkipThreshold:  2,
		RefineIterations1p: 0,
		RefineIterations2p: 1,
	}
}

// BC6HSettingsBasic returns the default BC6H quality tier.
func BC6HSettingsBasic() BC6HSettings {
	return BC6HSettings{
		SlowMode:           false,
		FastMode:           false,
		FastSkipThreshold:  4,
		RefineIterations1p: 2,
		RefineIterations2p: 2,
	}
}

// BC6HSettingsSlow returns a high-quality BC6H tier that tries every mode.
func BC6HSettingsSlow() BC6HSettings {
	return BC6HSettings{
		SlowMode:           true,
		FastMode:           false,
		FastSkipThreshold:  10,
		RefineIterations1p: 2,
		RefineIterations2p: 2,
	}
}

// BC6HSettingsVerySlow returns the highest BC6H quality tier: every mode, every
// two-subset partition.
func BC6HSettingsVerySlow() BC6HSettings {
	return BC6HSettings{
		SlowMode:           true,
		FastMode:           false,
		FastSkipThreshold:  32,
		RefineIterations1p: 2,
		RefineIterations2p: 2,
	}
}

// BC7Settings controls which BC7 mode families run and how hard each works.
//
// ModeSelection gates four independent groups: {0,2}, {1,3,7}, {4,5}, {6}.
// FastSkipThresholdMode{1,3,7} bound the partition candidates per mode, in
// [0,64]. Mode45Channel0 picks the first channel considered for the modes 4/5
// scalar plane rotation. Channels is 3 for opaque sources, 4 when alpha matters.
type BC7Settings struct {
	RefineIterations        [8]uint32
	ModeSelection           [4]bool
	SkipMode2               bool
	FastSkipThresholdMode1  uint32
	FastSkipThresholdMode3  uint32
	FastSkipThresholdMode7  uint32
	Mode45Channel0          uint32
	RefineIterationsChannel uint32
	Channels                uint32
}

// BC7SettingsOpaqueUltraFast returns the fastest opaque tier: mode 6 only.
func BC7SettingsOpaqueUltraFast() BC7Settings {
	return BC7Settings{
		Channels:                3,
		ModeSelection:           [4]bool{false, false, false, true},
		SkipMode2:               true,
		FastSkipThresholdMode1:  3,
		FastSkipThresholdMode3:  1,
		FastSkipThresholdMode7:  0,
		Mode45Channel0:          0,
		RefineIterationsChannel: 0,
		RefineIterations:        [8]uint32{2, 2, 2, 1, 2, 2, 1, 0},
	}
}

// BC7SettingsOpaqueVeryFast returns a fast opaque tier using modes {1,3} and {6}.
func BC7SettingsOpaqueVeryFast() BC7Settings {
	return BC7Settings{
		Channels:                3,
		ModeSelection:           [4]bool{false, true, false, true},
		SkipMode2:               true,
		FastSkipThresholdMode1:  3,
		FastSkipThresholdMode3:  1,
		FastSkipThresholdMode7:  0,
		Mode45Channel0:          0,
		RefineIterationsChannel: 0,
		RefineIterations:        [8]uint32{2, 2, 2, 1, 2, 2, 1, 0},
	}
}

// BC7SettingsOpaqueFast returns a fast opaque tier with a deeper partition search.
func BC7SettingsOpaqueFast() BC7Settings {
	return BC7Settings{
		Channels:                3,
		ModeSelection:           [4]bool{false, true, false, true},
		SkipMode2:               true,
		FastSkipThresholdMode1:  12,
		FastSkipThresholdMode3:  4,
		FastSkipThresholdMode7:  0,
		Mode45Channel0:          0,
		RefineIterationsChannel: 0,
		RefineIterations:        [8]uint32{2, 2, 2, 1, 2, 2, 2, 0},
	}
}

// BC7SettingsOpaqueBasic returns the default opaque quality tier.
func BC7SettingsOpaqueBasic() BC7Settings {
	return BC7Settings{
		Channels:                3,
		ModeSelection:           [4]bool{true, true, true, true},
		SkipMode2:               true,
		FastSkipThresholdMode1:  12,
		FastSkipThresholdMode3:  8,
		FastSkipThresholdMode7:  0,
		Mode45Channel0:          0,
		RefineIterationsChannel: 2,
		RefineIterations:        [8]uint32{2, 2, 2, 2, 2, 2, 2, 0},
	}
}

// BC7SettingsOpaqueSlow returns the highest opaque quality tier: every mode
// except 7 (its partition threshold is 0), every partition, four refinement
// rounds.
func BC7SettingsOpaqueSlow() BC7Settings {
	return BC7Settings{
		Channels:                3,
		ModeSelection:           [4]bool{true, true, true, true},
		SkipMode2:               false,
		FastSkipThresholdMode1:  64,
		FastSkipThresholdMode3:  64,
		FastSkipThresholdMode7:  0,
		Mode45Channel0:          0,
		RefineIterationsChannel: 4,
		RefineIterations:        [8]uint32{4, 4, 4, 4, 4, 4, 4, 0},
	}
}

// BC7SettingsAlphaUltraFast returns the fastest alpha-aware tier.
func BC7SettingsAlphaUltraFast() BC7Settings {
	return BC7Settings{
		Channels:                4,
		ModeSelection:           [4]bool{false, false, true, true},
		SkipMode2:               true,
		FastSkipThresholdMode1:  0,
		FastSkipThresholdMode3:  0,
		FastSkipThresholdMode7:  4,
		Mode45Channel0:          3,
		RefineIterationsChannel: 1,
		RefineIterations:        [8]uint32{2, 1, 2, 1, 1, 1, 2, 2},
	}
}

// BC7SettingsAlphaVeryFast returns a fast alpha-aware tier.
func BC7SettingsAlphaVeryFast() BC7Settings {
	return BC7Settings{
		Channels:                4,
		ModeSelection:           [4]bool{false, true, true, true},
		SkipMode2:               true,
		FastSkipThresholdMode1:  0,
		FastSkipThresholdMode3:  0,
		FastSkipThresholdMode7:  4,
		Mode45Channel0:          3,
		RefineIterationsChannel: 2,
		RefineIterations:        [8]uint32{2, 1, 2, 1, 2, 2, 2, 2},
	}
}

// BC7SettingsAlphaFast returns a fast alpha-aware tier with a partition search.
func BC7SettingsAlphaFast() BC7Settings {
	return BC7Settings{
		Channels:                4,
		ModeSelection:           [4]bool{false, true, true, true},
		SkipMode2:               true,
		FastSkipThresholdMode1:  4,
		FastSkipThresholdMode3:  4,
		FastSkipThresholdMode7:  8,
		Mode45Channel0:          3,
		RefineIterationsChannel: 2,
		RefineIterations:        [8]uint32{2, 1, 2, 1, 2, 2, 2, 2},
	}
}

// BC7SettingsAlphaBasic returns the default alpha-aware quality tier.
func BC7SettingsAlphaBasic() BC7Settings {
	return BC7Settings{
		Channels:                4,
		ModeSelection:           [4]bool{true, true, true, true},
		SkipMode2:               true,
		FastSkipThresholdMode1:  12,
		FastSkipThresholdMode3:  8,
		FastSkipThresholdMode7:  8,
		Mode45Channel0:          0,
		RefineIterationsChannel: 2,
		RefineIterations:        [8]uint32{2, 2, 2, 2, 2, 2, 2, 2},
	}
}

// BC7SettingsAlphaSlow returns the highest alpha-aware quality tier.
func BC7SettingsAlphaSlow() BC7Settings {
	return BC7Settings{
		Channels:                4,
		ModeSelection:           [4]bool{true, true, true, true},
		SkipMode2:               false,
		FastSkipThresholdMode1:  64,
		FastSkipThresholdMode3:  64,
		FastSkipThresholdMode7:  64,
		Mode45Channel0:          0,
		RefineIterationsChannel: 4,
		RefineIterations:        [8]uint32{4, 4, 4, 4, 4, 4, 4, 4},
	}
}
