package protocol

// ForcePlate is one frame of force-sensor samples. Channels are ragged:
// every channel declares its own sample count. NatNet >= 2.9 only.
type ForcePlate struct {
	ID       int32
	Channels [][]float32
}

func decodeForcePlate(r *reader) (ForcePlate, error) {
	var fp ForcePlate
	var err error

	if fp.ID, err = r.int32(); err != nil {
		return ForcePlate{}, err
	}

	numChannels, capHint, err := r.count()
	if err != nil {
		return ForcePlate{}, err
	}

	fp.Channels = make([][]float32, 0, capHint)
	for i := 0; i < numChannels; i++ {
		numSamples, sampleCap, err := r.count()
		if err != nil {
			return ForcePlate{}, err
		}

		samples := make([]float32, 0, sampleCap)
		for j := 0; j < numSamples; j++ {
			v, err := r.float32()
			if err != nil {
				return ForcePlate{}, err
			}
			samples = append(samples, v)
		}
		fp.Channels = append(fp.Channels, samples)
	}

	return fp, nil
}
