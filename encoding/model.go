package encoding

// MaxModelValue is the largest model weighting parameter of the model update
// equation.
const MaxModelValue = 16

// RoundFwd applies the lossy rounding: a logical right shift by the lossy
// parameter. A zero parameter is lossless.
func RoundFwd(value uint32, lossyPar uint) uint32 {
	return value >> lossyPar
}

// RoundInv reverses the lossy rounding by shifting left; the low lossyPar
// bits stay zero.
func RoundInv(value uint32, lossyPar uint) uint32 {
	return value << lossyPar
}

// UpdateModel computes the next model value from a data sample and the prior
// model:
//
//	new = ((MaxModelValue - modelValue)*data + modelValue*model) / MaxModelValue
//
// The intermediate products are computed in 64 bits so the weighting never
// overflows for 32-bit samples. With lossy compression the caller passes
// RoundInv(RoundFwd(data)) so both ends of the link agree on the data term.
func UpdateModel(data, model uint32, modelValue uint32) uint32 {
	weightedData := uint64(data) * uint64(MaxModelValue-modelValue)
	weightedModel := uint64(model) * uint64(modelValue)

	return uint32((weightedData + weightedModel) / MaxModelValue)
}
