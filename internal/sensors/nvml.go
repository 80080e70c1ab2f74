package sensors

import (
	"context"
	"fmt"

	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const nvmlModule = "nvidia"

// nvmlLibrary abstracts the NVML calls used here so they can be faked.
type nvmlLibrary interface {
	Init() nvml.Return
	Shutdown() nvml.Return
	DeviceGetCount() (int, nvml.Return)
	DeviceGetHandleByIndex(index int) (nvml.Device, nvml.Return)
}

type nvmlPackage struct{}

func (nvmlPackage) Init() nvml.Return {
	return nvml.Init()
}

func (nvmlPackage) Shutdown() nvml.Return {
	return nvml.Shutdown()
}

func (nvmlPackage) DeviceGetCount() (int, nvml.Return) {
	return nvml.DeviceGetCount()
}

func (nvmlPackage) DeviceGetHandleByIndex(index int) (nvml.Device, nvml.Return) {
	return nvml.DeviceGetHandleByIndex(index)
}

type nvmlError struct {
	ret nvml.Return
}

func (e nvmlError) Error() string {
	return nvml.ErrorString(e.ret)
}

// NVMLSource reports the core temperature of every NVIDIA GPU as
// nvidia.gpu_<index>.
type NVMLSource struct {
	lib     nvmlLibrary
	devices []nvml.Device
	log     logger.Logger
}

// NewNVMLSource initializes NVML. It reports false when the driver library is
// missing or no GPU is present.
func NewNVMLSource(log logger.Logger) (*NVMLSource, bool) {
	return newNVMLSource(nvmlPackage{}, log)
}

func newNVMLSource(lib nvmlLibrary, log logger.Logger) (*NVMLSource, bool) {
	if ret := lib.Init(); ret != nvml.SUCCESS {
		log.Debug().Str("reason", nvml.ErrorString(ret)).Msg("NVML not available")
		return nil, false
	}

	count, ret := lib.DeviceGetCount()
	if ret != nvml.SUCCESS || count == 0 {
		lib.Shutdown()
		log.Debug().Int("count", count).Msg("No NVIDIA GPUs found")
		return nil, false
	}

	src := &NVMLSource{lib: lib, log: log}
	for i := 0; i < count; i++ {
		device, ret := lib.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			log.Warn().Int("index", i).Str("reason", nvml.ErrorString(ret)).Msg("Failed to get GPU handle")
			continue
		}
		if name, ret := device.GetName(); ret == nvml.SUCCESS {
			log.Debug().Int("index", i).Msgf("Detected GPU: %v", name)
		}
		src.devices = append(src.devices, device)
	}

	if len(src.devices) == 0 {
		lib.Shutdown()
		return nil, false
	}

	return src, true
}

func (*NVMLSource) Name() string {
	return "nvml"
}

func (s *NVMLSource) ReadAll(ctx context.Context) ([]Sample, error) {
	samples := make([]Sample, 0, len(s.devices))
	for i, device := range s.devices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU)
		if ret != nvml.SUCCESS {
			s.log.Debug().Int("index", i).Str("reason", nvml.ErrorString(ret)).Msg("Failed to read GPU temperature")
			continue
		}

		samples = append(samples, Sample{
			Key:     Key(nvmlModule, fmt.Sprintf("GPU %d", i)),
			Celsius: float64(temp),
		})
	}

	return samples, nil
}

func (s *NVMLSource) Close() error {
	if ret := s.lib.Shutdown(); ret != nvml.SUCCESS {
		return errors.New().Wrap(errors.ErrShutdownFailed, nvmlError{ret: ret})
	}

	return nil
}
