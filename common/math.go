package common

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// OrthographicLH creates a left-handed orthographic projection that maps depth into the WebGPU
// clip range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right: horizontal extent of the view volume
//   - bottom, top: vertical extent of the view volume
//   - near, far: depth extent of the view volume (far must differ from near)
func OrthographicLH(out []float32, left, right, bottom, top, near, far float32) {
	rw := 1 / (right - left)
	rh := 1 / (top - bottom)
	rd := 1 / (far - near)
	Identity(out)

	out[0] = 2 * rw
	out[5] = 2 * rh
	out[10] = rd
	out[12] = -(left + right) * rw
	out[13] = -(top + bottom) * rh
	out[14] = -rd * near
}

// UnitQuadProjection returns the projection that stretches the unit quad centred at the origin
// (x and y in [-0.5, 0.5]) over the whole clip space.
//
// Returns:
//   - [16]float32: the column-major projection matrix
func UnitQuadProjection() [16]float32 {
	var m [16]float32
	OrthographicLH(m[:], -0.5, 0.5, -0.5, 0.5, -1, 1)
	return m
}
