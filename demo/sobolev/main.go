// Command sobolev fits a neural network to a function with
// known derivatives, using a Sobolev loss.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"

	diffml "github.com/neilkichler/diff-ml"
	"github.com/neilkichler/diff-ml/dmlff"
	"github.com/neilkichler/diff-ml/dmlsgd"
	"github.com/neilkichler/diff-ml/losses"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/serializer"
)

type Config struct {
	method     string
	activation string
	dims       int
	samples    int
	hidden     int
	batchSize  int
	iterations int
	stepSize   float64
	optimizer  string
	momentum   float64
	weighting  float64
	outPath    string
}

var config Config

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	flag.StringVar(&config.method, "method", losses.FirstOrder.String(), "Sobolev method")
	flag.StringVar(&config.activation, "activation", diffml.Softplus.String(), "Hidden activation")
	flag.IntVar(&config.dims, "dims", 4, "Number of input dimensions")
	flag.IntVar(&config.samples, "samples", 1024, "Number of training samples")
	flag.IntVar(&config.hidden, "hidden", 32, "Size of each hidden layer")
	flag.IntVar(&config.batchSize, "batch", 64, "Mini-batch size")
	flag.IntVar(&config.iterations, "iters", 2000, "Number of training iterations")
	flag.Float64Var(&config.stepSize, "step", 0.003, "Step size")
	flag.StringVar(&config.optimizer, "optimizer", "adam", "Optimizer (adam, momentum or sgd)")
	flag.Float64Var(&config.momentum, "momentum", 0.9, "Momentum coefficient")
	flag.Float64Var(&config.weighting, "weighting", 1, "Gradient loss weighting")
	flag.StringVar(&config.outPath, "out", "", "Path to save the trained network")
	flag.Parse()

	log.Printf("%+v", config)

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// newTransformer creates the gradient transformer for an
// optimizer name.
// Plain SGD uses no transformer.
func newTransformer(name string, momentum float64) (dmlsgd.Transformer, error) {
	switch name {
	case "adam":
		return &dmlsgd.Adam{}, nil
	case "momentum":
		return &dmlsgd.Momentum{Momentum: momentum}, nil
	case "sgd":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown optimizer: %s", name)
	}
}

func run() error {
	method, err := losses.ParseMethod(config.method)
	if err != nil {
		return err
	}
	act, err := diffml.ParseActivation(config.activation)
	if err != nil {
		return err
	}
	transformer, err := newTransformer(config.optimizer, config.momentum)
	if err != nil {
		return err
	}
	lossFn, err := losses.SobolevWeighted(losses.MSE, method, config.weighting)
	if err != nil {
		return err
	}

	c := anyvec64.CurrentCreator()
	rng := rand.New(rand.NewSource(1))
	training := sampleTarget(c, rng, config.samples)
	validation := sampleTarget(c, rng, config.samples/4)

	stats, err := dmlff.ComputeStats(training)
	if err != nil {
		return err
	}
	net := stats.Wrap(c, diffml.NewMLP(c, config.dims, []int{config.hidden, config.hidden}, act))

	t := &dmlff.Trainer{
		Model:  net,
		Loss:   lossFn,
		Params: net.Parameters(),
	}

	done := make(chan struct{})
	var iterNum int
	s := &dmlsgd.SGD{
		Fetcher:     t,
		Gradienter:  t,
		Transformer: transformer,
		Samples:     training,
		Rater:       dmlsgd.ConstRater(config.stepSize),
		BatchSize:   config.batchSize,
		StatusFunc: func(b dmlsgd.Batch) {
			if iterNum%100 == 0 {
				log.Printf("iter %d: cost=%v", iterNum, t.LastCost)
			}
			iterNum++
			if iterNum > config.iterations {
				close(done)
			}
		},
	}
	log.Println("Training with", method, "loss...")
	if err := s.Run(done); err != nil {
		return err
	}

	log.Println("Computing validation errors...")
	valueErr, gradErr, err := validationErrors(t, net, validation)
	if err != nil {
		return err
	}
	log.Printf("validation: value RMSE=%f gradient RMSE=%f", valueErr, gradErr)

	if config.outPath != "" {
		if err := serializer.SaveAny(config.outPath, net); err != nil {
			return err
		}
		log.Println("Saved network to", config.outPath)
	}
	return nil
}

// sampleTarget samples f(x) = sum_i sin(x_i) + x_i^2/2
// uniformly on [-2, 2]^dims.
func sampleTarget(c anyvec.Creator, rng *rand.Rand, n int) dmlff.SliceSampleList {
	var res dmlff.SliceSampleList
	for i := 0; i < n; i++ {
		x := make([]float64, config.dims)
		dydx := make([]float64, config.dims)
		var y float64
		for j := range x {
			x[j] = rng.Float64()*4 - 2
			y += math.Sin(x[j]) + x[j]*x[j]/2
			dydx[j] = math.Cos(x[j]) + x[j]
		}
		res = append(res, dmlff.NewSample(c, x, y, dydx))
	}
	return res
}

func validationErrors(t *dmlff.Trainer, net diffml.Net,
	samples dmlff.SliceSampleList) (valueErr, gradErr float64, err error) {
	b, err := t.Fetch(samples)
	if err != nil {
		return 0, 0, err
	}
	batch := b.(*diffml.Batch)
	values, grads := net.ValueAndGrad(batch.X, batch.Num)
	valueErr = scalar(losses.RMSE(batch.Y, values))
	gradErr = scalar(losses.RMSE(batch.DYDX, grads))
	return
}

func scalar(r anydiff.Res) float64 {
	return r.Output().Data().([]float64)[0]
}
