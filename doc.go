// Package scorego provides kernel-based density estimation for Go, built
// around score matching in a reproducing kernel Hilbert space with a
// Nystrom low-rank approximation.
//
// The estimator learns an unnormalized log-density from samples alone: no
// normalizing constant is ever computed, and the fitted model exposes the
// log-density, its gradient and its Hessian at arbitrary query points.
//
// # Features
//
// - Score matching: fits the gradient of the log-density directly
// - Nystrom basis: system size controlled by basis points, not sample count
// - Per-dimension basis masks: individual (point, dimension) components
// - CPU-parallel matrix assembly and batch evaluation
// - Structured errors and warnings with stack traces
//
// # Installation
//
// Install scorego using go get:
//
//	go get github.com/YuminosukeSato/scorego
//
// # Quick Start
//
// Fit a density model on 2-D samples and evaluate it:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/scorego/density"
//	    "github.com/YuminosukeSato/scorego/density/kernel"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    // Training data: one column per point.
//	    data := mat.NewDense(2, 3, []float64{
//	        0, 2, 3,
//	        1, 4, 6,
//	    })
//
//	    k, err := kernel.NewGaussian(2.0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    est, err := density.NewNystromFromPoints(data, []int{0, 1}, k, 1.0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := est.Fit(); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    logp, err := est.LogPDF(0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("log-density at first point:", logp)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - density: the Nystrom score-matching estimator and basis masks
//   - density/kernel: kernel derivative contract and the Gaussian RBF kernel
//   - core/model: estimator interfaces and fitted-state management
//   - core/parallel: parallel processing utilities
//   - pkg/errors: structured errors and the warning system
//   - pkg/log: structured logging
//
// # Basis selection
//
// Four construction paths cover the common basis choices: an explicit basis
// matrix, a subset of training points, a boolean mask over the training
// data, and a mask over an explicit basis. All four feed one implementation,
// so a mask that selects every component reproduces the whole-point model
// exactly.
//
// # License
//
// scorego is released under the MIT License.
package scorego
