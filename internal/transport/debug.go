//go:build debug

package transport

import "fmt"

const traceSteps = true

func traceStep(n int, p Point3, d Vector3) {
	fmt.Printf("[DEBUG] step %d: P=(%.4f, %.4f, %.4f) |P|=%.4f D=(%.4f, %.4f, %.4f)\n",
		n, p.X, p.Y, p.Z, p.Dist(), d.X, d.Y, d.Z)
}
