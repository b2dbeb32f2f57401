package av1config

import (
	"math"

	"github.com/user/av1rtc/pkg/ports"
)

// SpeedPreset returns the engine speed (cpu-used) for a resolution.
// Higher is faster; real-time constraints dominate as resolution grows.
func SpeedPreset(width, height int) int {
	area := width * height
	switch {
	case area <= 320*180:
		return 8
	case area <= 640*360:
		return 9
	default:
		return 10
	}
}

// TileLayout returns the tile control to use and its log2 tile count.
//
// Row tiling is used only for 4 threads at 640x360 or 640x480: column tiling
// fails to initialize on some Android builds at those sizes.
func TileLayout(threads, width, height int) (ports.ControlID, int) {
	id := ports.ControlTileColumns
	if threads == 4 && width == 640 && (height == 360 || height == 480) {
		id = ports.ControlTileRows
	}
	return id, tileLog2(threads)
}

func tileLog2(threads int) int {
	if threads <= 1 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(threads))))
}

// SuperblockSize picks 64x64 superblocks for mid-size resolutions with enough
// threads and lets the engine decide otherwise.
func SuperblockSize(width, height, threads int) int {
	area := width * height
	if threads >= 4 && area >= 960*540 && area < 1920*1080 {
		return ports.Superblock64x64
	}
	return ports.SuperblockDynamic
}

// screenContentControls are applied to every real-time screen-sharing encoder.
// The resolution-dependent entries are filled in by Controls.
var screenContentControls = []ports.Control{
	{ID: ports.ControlEnableCDEF, Value: 1},
	{ID: ports.ControlEnableTPLModel, Value: 0},
	{ID: ports.ControlDeltaQMode, Value: 0},
	{ID: ports.ControlEnableOrderHint, Value: 0},
	{ID: ports.ControlAQMode, Value: 3},
	{ID: ports.ControlMaxIntraBitratePct, Value: 300},
	{ID: ports.ControlCoeffCostUpdFreq, Value: 3},
	{ID: ports.ControlModeCostUpdFreq, Value: 3},
	{ID: ports.ControlMVCostUpdFreq, Value: 3},
	{ID: ports.ControlTuneContent, Value: ports.ContentScreen},
	{ID: ports.ControlEnablePalette, Value: 1},
}

var lowLatencyControls = []ports.Control{
	{ID: ports.ControlRowMT, Value: 1},
	{ID: ports.ControlEnableOBMC, Value: 0},
	{ID: ports.ControlNoiseSensitivity, Value: 0},
	{ID: ports.ControlEnableWarpedMotion, Value: 0},
	{ID: ports.ControlEnableGlobalMotion, Value: 0},
	{ID: ports.ControlEnableRefFrameMVs, Value: 0},
}

var disabledToolControls = []ports.Control{
	{ID: ports.ControlEnableCFLIntra, Value: 0},
	{ID: ports.ControlEnableSmoothIntra, Value: 0},
	{ID: ports.ControlEnableAngleDelta, Value: 0},
	{ID: ports.ControlEnableFilterIntra, Value: 0},
	{ID: ports.ControlIntraDefaultTXOnly, Value: 1},
	{ID: ports.ControlDisableTrellisQuant, Value: 1},
	{ID: ports.ControlEnableDistWtdComp, Value: 0},
	{ID: ports.ControlEnableDiffWtdComp, Value: 0},
	{ID: ports.ControlEnableDualFilter, Value: 0},
	{ID: ports.ControlEnableInterIntraComp, Value: 0},
	{ID: ports.ControlEnableInterIntraWedge, Value: 0},
	{ID: ports.ControlEnableIntraEdgeFilter, Value: 0},
	{ID: ports.ControlEnableIntraBC, Value: 0},
	{ID: ports.ControlEnableMaskedComp, Value: 0},
	{ID: ports.ControlEnablePaethIntra, Value: 0},
	{ID: ports.ControlEnableQM, Value: 0},
	{ID: ports.ControlEnableRectPartitions, Value: 0},
	{ID: ports.ControlEnableRestoration, Value: 0},
	{ID: ports.ControlEnableSmoothInterIntra, Value: 0},
	{ID: ports.ControlEnableTX64, Value: 0},
	{ID: ports.ControlMaxReferenceFrames, Value: 3},
}

// Controls returns the ordered control list for cfg.
func Controls(cfg ports.EncoderConfig) []ports.Control {
	tileID, tiles := TileLayout(cfg.Threads, cfg.Width, cfg.Height)

	out := make([]ports.Control, 0, 1+len(screenContentControls)+1+len(lowLatencyControls)+1+len(disabledToolControls))
	out = append(out, ports.Control{ID: ports.ControlCPUUsed, Value: SpeedPreset(cfg.Width, cfg.Height)})
	out = append(out, screenContentControls...)
	out = append(out, ports.Control{ID: tileID, Value: tiles})
	out = append(out, lowLatencyControls...)
	out = append(out, ports.Control{ID: ports.ControlSuperblockSize, Value: SuperblockSize(cfg.Width, cfg.Height, cfg.Threads)})
	out = append(out, disabledToolControls...)
	return out
}

// Lookup returns the value of id in controls.
func Lookup(controls []ports.Control, id ports.ControlID) (int, bool) {
	for _, c := range controls {
		if c.ID == id {
			return c.Value, true
		}
	}
	return 0, false
}
