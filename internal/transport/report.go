package transport

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type reportWriter struct {
	w   io.Writer
	p   *message.Printer
	err error
}

func (r *reportWriter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = r.p.Fprintf(r.w, format, args...)
}

// WriteReport prints a human-readable summary of res.
func WriteReport(w io.Writer, cfg Config, res *EnsembleResult) error {
	cfg = cfg.withDefaults()
	u := cfg.Units
	rw := &reportWriter{w: w, p: message.NewPrinter(language.English)}

	rw.printf("Photons simulated: %d (seed %d, %v)\n", res.PhotonCount, res.Seed, res.Elapsed)
	rw.printf("Domain radius: %g %s\n", cfg.DomainRadius, u)
	if cfg.Attenuating() {
		rw.printf("Attenuation coefficient: %g 1/%s\n", cfg.AttenuationCoefficient, u)
	} else {
		rw.printf("Fixed step size: %g %s (no attenuation)\n", cfg.FixedStepSize, u)
	}
	rw.printf("Absorbed: %d, escaped: %d, diverged: %d\n", res.Absorbed, res.Escaped, res.Diverged)
	rw.printf("Mean interactions per photon: %.4f\n", res.MeanInteractions)
	if cfg.BoundaryCheckRadius > 0 {
		rw.printf("Number of photons that passed through r = %g %s: %d\n", cfg.BoundaryCheckRadius, u, res.CrossingCount)
		rw.printf("Crossing fraction: %.4f ± %.4f\n", res.CrossingFraction(), res.CrossingStdErr())
	}
	return rw.err
}
