//go:build !debug

package transport

const traceSteps = false

func traceStep(int, Point3, Vector3) {}
