package density

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorego/density/kernel"
	"github.com/YuminosukeSato/scorego/pkg/errors"
	"github.com/YuminosukeSato/scorego/pkg/log"
)

// The fixture is three 2-D training points (0,1), (2,4), (3,6) with a
// Gaussian kernel of bandwidth 2, ridge 1, and the first two points as
// basis. Every reference value below was computed independently from the
// closed-form kernel derivatives.
func fixtureTrain() *mat.Dense {
	return mat.NewDense(2, 3, []float64{
		0, 2, 3,
		1, 4, 6,
	})
}

func fixtureQuery() *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		0, 1,
		1, 1,
	})
}

func fixtureKernel(t *testing.T) *kernel.Gaussian {
	t.Helper()
	k, err := kernel.NewGaussian(2.0)
	if err != nil {
		t.Fatalf("NewGaussian: %v", err)
	}
	return k
}

func fixtureEstimator(t *testing.T) *Nystrom {
	t.Helper()
	n, err := NewNystromFromPoints(fixtureTrain(), []int{0, 1}, fixtureKernel(t), 1.0)
	if err != nil {
		t.Fatalf("NewNystromFromPoints: %v", err)
	}
	return n
}

func fullMask(d, m int) *Mask {
	mask := NewMask(d, m)
	for p := 0; p < m; p++ {
		for i := 0; i < d; i++ {
			mask.Set(i, p, true)
		}
	}
	return mask
}

var fixtureBeta = []float64{
	-0.007184076490764227,
	-0.01075737095933401,
	-0.01351842969253112,
	-0.03033391025790692,
}

func TestNystromConstruction(t *testing.T) {
	n := fixtureEstimator(t)
	if got := n.NumDimensions(); got != 2 {
		t.Errorf("NumDimensions() = %d, want 2", got)
	}
	if got := n.NumData(); got != 3 {
		t.Errorf("NumData() = %d, want 3", got)
	}
	if got := n.NumBasis(); got != 2 {
		t.Errorf("NumBasis() = %d, want 2", got)
	}
	if got := n.SystemSize(); got != 4 {
		t.Errorf("SystemSize() = %d, want 4", got)
	}
	if got := n.NumQuery(); got != 3 {
		t.Errorf("NumQuery() = %d, want 3 (query defaults to training data)", got)
	}
	if n.IsFitted() {
		t.Error("IsFitted() = true before Fit")
	}
	if _, err := n.Beta(); err == nil {
		t.Error("Beta() before Fit should fail")
	}
}

func TestNystromConstructionErrors(t *testing.T) {
	k := fixtureKernel(t)
	data := fixtureTrain()

	t.Run("nil kernel", func(t *testing.T) {
		if _, err := NewNystrom(data, data, nil, 1.0); err == nil {
			t.Fatal("expected error for nil kernel")
		}
	})
	t.Run("negative lambda", func(t *testing.T) {
		if _, err := NewNystrom(data, data, k, -1.0); err == nil {
			t.Fatal("expected error for negative lambda")
		}
	})
	t.Run("basis dimension mismatch", func(t *testing.T) {
		basis := mat.NewDense(3, 2, nil)
		_, err := NewNystrom(data, basis, k, 1.0)
		var dimErr *errors.DimensionError
		if !errors.As(err, &dimErr) {
			t.Fatalf("expected DimensionError, got %v", err)
		}
	})
	t.Run("empty point list", func(t *testing.T) {
		_, err := NewNystromFromPoints(data, nil, k, 1.0)
		var cfgErr *errors.InvalidConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected InvalidConfigurationError, got %v", err)
		}
	})
	t.Run("point index out of range", func(t *testing.T) {
		if _, err := NewNystromFromPoints(data, []int{0, 3}, k, 1.0); err == nil {
			t.Fatal("expected error for out-of-range basis point")
		}
	})
	t.Run("all-false mask", func(t *testing.T) {
		_, err := NewNystromD(data, NewMask(2, 3), k, 1.0)
		var cfgErr *errors.InvalidConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected InvalidConfigurationError, got %v", err)
		}
	})
	t.Run("mask shape mismatch", func(t *testing.T) {
		mask := fullMask(2, 2)
		_, err := NewNystromD(data, mask, k, 1.0)
		var dimErr *errors.DimensionError
		if !errors.As(err, &dimErr) {
			t.Fatalf("expected DimensionError, got %v", err)
		}
	})
}

func TestComputeGmm(t *testing.T) {
	n := fixtureEstimator(t)
	gmm := n.ComputeGmm()

	want := [][]float64{
		{1, 0, -0.004510317578932718, -0.009020635157865435},
		{0, 1, -0.009020635157865435, -0.01202751354382058},
		{-0.004510317578932718, -0.009020635157865435, 1, 0},
		{-0.009020635157865435, -0.01202751354382058, 0, 1},
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if got := gmm.At(i, j); math.Abs(got-want[i][j]) > 1e-15 {
				t.Errorf("Gmm(%d, %d) = %.16g, want %.16g", i, j, got, want[i][j])
			}
		}
	}
}

func TestComputeGmn(t *testing.T) {
	n := fixtureEstimator(t)
	gmn := n.ComputeGmn()

	if r, c := gmn.Dims(); r != 4 || c != 6 {
		t.Fatalf("Gmn dims = (%d, %d), want (4, 6)", r, c)
	}
	// The first four columns repeat the basis Gram block.
	gmm := n.ComputeGmm()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(gmn.At(i, j)-gmm.At(i, j)) > 1e-15 {
				t.Errorf("Gmn(%d, %d) disagrees with Gmm", i, j)
			}
		}
	}

	wantCol4 := []float64{-3.311950175028133e-07, -6.20990657817775e-07, 0, -0.1641699972477976}
	wantCol5 := []float64{-6.20990657817775e-07, -9.935850525084401e-07, -0.1641699972477976, -0.2462549958716964}
	for i := 0; i < 4; i++ {
		if got := gmn.At(i, 4); math.Abs(got-wantCol4[i]) > 1e-15 {
			t.Errorf("Gmn(%d, 4) = %.16g, want %.16g", i, got, wantCol4[i])
		}
		if got := gmn.At(i, 5); math.Abs(got-wantCol5[i]) > 1e-15 {
			t.Errorf("Gmn(%d, 5) = %.16g, want %.16g", i, got, wantCol5[i])
		}
	}
}

func TestComputeSystemVector(t *testing.T) {
	n := fixtureEstimator(t)
	h := n.ComputeSystemVector()

	want := []float64{
		0.009021877139181069,
		0.01353302270565755,
		0.01834103105010084,
		0.04119237967913438,
	}
	for i, w := range want {
		if got := h.AtVec(i); math.Abs(got-w) > 1e-15 {
			t.Errorf("h[%d] = %.16g, want %.16g", i, got, w)
		}
	}
}

func TestComputeSystemMatrix(t *testing.T) {
	n := fixtureEstimator(t)
	a := n.ComputeSystemMatrix()

	// Upper triangle, column by column.
	want := map[[2]int]float64{
		{0, 0}: 1.333367238274603,
		{0, 1}: 4.972724722780854e-05,
		{1, 1}: 1.333408677647357,
		{0, 2}: -0.007517161982209667,
		{1, 2}: -0.01503433755749061,
		{2, 2}: 1.342351167606552,
		{0, 3}: -0.0150343228316634,
		{1, 3}: -0.02004574036526177,
		{2, 3}: 0.01352562124512452,
		{3, 3}: 1.36260644797627,
	}
	for ij, w := range want {
		if got := a.At(ij[0], ij[1]); math.Abs(got-w) > 1e-15 {
			t.Errorf("A(%d, %d) = %.16g, want %.16g", ij[0], ij[1], got, w)
		}
		if got := a.At(ij[1], ij[0]); math.Abs(got-w) > 1e-15 {
			t.Errorf("A(%d, %d) = %.16g, want %.16g (symmetry)", ij[1], ij[0], got, w)
		}
	}
}

func TestSystemMatrixLambdaL2(t *testing.T) {
	base := fixtureEstimator(t)
	reg, err := NewNystromFromPoints(fixtureTrain(), []int{0, 1}, fixtureKernel(t), 1.0, WithLambdaL2(0.5))
	if err != nil {
		t.Fatalf("NewNystromFromPoints: %v", err)
	}

	a := base.ComputeSystemMatrix()
	aReg := reg.ComputeSystemMatrix()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := a.At(i, j)
			if i == j {
				want += 0.5
			}
			if math.Abs(aReg.At(i, j)-want) > 1e-15 {
				t.Errorf("lambdaL2 system matrix differs at (%d, %d)", i, j)
			}
		}
	}
}

func TestFitBeta(t *testing.T) {
	n := fixtureEstimator(t)
	if err := n.Fit(); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !n.IsFitted() {
		t.Fatal("IsFitted() = false after Fit")
	}

	beta, err := n.Beta()
	if err != nil {
		t.Fatalf("Beta: %v", err)
	}
	for i, w := range fixtureBeta {
		if got := beta.AtVec(i); math.Abs(got-w) > 1e-15 {
			t.Errorf("beta[%d] = %.16g, want %.16g", i, got, w)
		}
	}
}

func TestFitDeterministic(t *testing.T) {
	n := fixtureEstimator(t)
	if err := n.Fit(); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	first, _ := n.Beta()
	if err := n.Fit(); err != nil {
		t.Fatalf("second Fit: %v", err)
	}
	second, _ := n.Beta()
	for i := 0; i < first.Len(); i++ {
		if first.AtVec(i) != second.AtVec(i) {
			t.Errorf("refitting changed beta[%d]: %.17g vs %.17g", i, first.AtVec(i), second.AtVec(i))
		}
	}
}

// All four construction paths describe the same model when the mask selects
// every component; they must produce identical coefficients.
func TestConstructionPathsAgree(t *testing.T) {
	data := fixtureTrain()
	k := fixtureKernel(t)
	basis := subsampleMatrixCols([]int{0, 1}, data)

	maskOverData := NewMask(2, 3)
	for p := 0; p < 2; p++ {
		maskOverData.Set(0, p, true)
		maskOverData.Set(1, p, true)
	}

	builders := []struct {
		name  string
		build func() (*Nystrom, error)
	}{
		{"explicit basis", func() (*Nystrom, error) {
			return NewNystrom(data, basis, k, 1.0)
		}},
		{"point subset", func() (*Nystrom, error) {
			return NewNystromFromPoints(data, []int{0, 1}, k, 1.0)
		}},
		{"mask over data", func() (*Nystrom, error) {
			return NewNystromD(data, maskOverData, k, 1.0)
		}},
		{"mask over explicit basis", func() (*Nystrom, error) {
			return NewNystromDExplicitBasis(data, basis, fullMask(2, 2), k, 1.0)
		}},
	}

	for _, b := range builders {
		t.Run(b.name, func(t *testing.T) {
			n, err := b.build()
			if err != nil {
				t.Fatalf("construction: %v", err)
			}
			if err := n.Fit(); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			beta, err := n.Beta()
			if err != nil {
				t.Fatalf("Beta: %v", err)
			}
			if beta.Len() != len(fixtureBeta) {
				t.Fatalf("beta length = %d, want %d", beta.Len(), len(fixtureBeta))
			}
			for i, w := range fixtureBeta {
				if got := beta.AtVec(i); math.Abs(got-w) > 1e-14 {
					t.Errorf("beta[%d] = %.16g, want %.16g", i, got, w)
				}
			}
		})
	}
}

func TestNystromDSubsamplesUntouchedPoints(t *testing.T) {
	data := fixtureTrain()
	k := fixtureKernel(t)

	// Mask touches only points 1 and 2; the basis should collapse to those
	// columns and match the explicit point-subset construction.
	mask := NewMask(2, 3)
	for _, p := range []int{1, 2} {
		mask.Set(0, p, true)
		mask.Set(1, p, true)
	}
	masked, err := NewNystromD(data, mask, k, 1.0)
	if err != nil {
		t.Fatalf("NewNystromD: %v", err)
	}
	if got := masked.NumBasis(); got != 2 {
		t.Fatalf("NumBasis() = %d, want 2 after subsampling", got)
	}

	direct, err := NewNystromFromPoints(data, []int{1, 2}, k, 1.0)
	if err != nil {
		t.Fatalf("NewNystromFromPoints: %v", err)
	}

	for _, n := range []*Nystrom{masked, direct} {
		if err := n.Fit(); err != nil {
			t.Fatalf("Fit: %v", err)
		}
	}
	bm, _ := masked.Beta()
	bd, _ := direct.Beta()
	if bm.Len() != bd.Len() {
		t.Fatalf("beta lengths differ: %d vs %d", bm.Len(), bd.Len())
	}
	for i := 0; i < bm.Len(); i++ {
		if math.Abs(bm.AtVec(i)-bd.AtVec(i)) > 1e-14 {
			t.Errorf("beta[%d] differs: %.16g vs %.16g", i, bm.AtVec(i), bd.AtVec(i))
		}
	}
}

func TestSubsampleGmmFromGmn(t *testing.T) {
	data := fixtureTrain()
	k := fixtureKernel(t)

	// Mask over all three points keeps the basis aliased to the data, the
	// only configuration where the shortcut applies.
	n, err := NewNystromD(data, fullMask(2, 3), k, 1.0)
	if err != nil {
		t.Fatalf("NewNystromD: %v", err)
	}
	gmn := n.ComputeGmn()
	sub, err := n.SubsampleGmmFromGmn(gmn)
	if err != nil {
		t.Fatalf("SubsampleGmmFromGmn: %v", err)
	}
	direct := n.ComputeGmm()
	if !mat.EqualApprox(sub, direct, 1e-15) {
		t.Error("subsampled Gmm disagrees with direct assembly")
	}

	// With a detached basis the shortcut must refuse.
	detached := fixtureEstimator(t)
	_, err = detached.SubsampleGmmFromGmn(detached.ComputeGmn())
	var cfgErr *errors.InvalidConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected InvalidConfigurationError, got %v", err)
	}
}

func TestUnusedBasisPointWarning(t *testing.T) {
	var captured []error
	errors.SetWarningHandler(func(w error) {
		captured = append(captured, w)
	})
	defer errors.SetWarningHandler(nil)

	data := fixtureTrain()
	basis := subsampleMatrixCols([]int{0, 1}, data)
	mask := NewMask(2, 2)
	mask.Set(0, 0, true) // point 1 contributes nothing

	if _, err := NewNystromDExplicitBasis(data, basis, mask, fixtureKernel(t), 1.0); err != nil {
		t.Fatalf("NewNystromDExplicitBasis: %v", err)
	}

	if len(captured) != 1 {
		t.Fatalf("captured %d warnings, want 1", len(captured))
	}
	var w *errors.UnusedBasisPointWarning
	if !errors.As(captured[0], &w) {
		t.Fatalf("warning type = %T, want UnusedBasisPointWarning", captured[0])
	}
	if w.PointIndex != 1 {
		t.Errorf("PointIndex = %d, want 1", w.PointIndex)
	}
}

func TestFitLogsStructuredRecord(t *testing.T) {
	tl, _ := log.NewTestLogger(log.LevelDebug)
	n, err := NewNystromFromPoints(fixtureTrain(), []int{0, 1}, fixtureKernel(t), 1.0, WithLogger(tl))
	if err != nil {
		t.Fatalf("NewNystromFromPoints: %v", err)
	}
	if err := n.Fit(); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if !tl.ContainsMessage("fit complete") {
		t.Fatal("Fit emitted no completion record")
	}
	if !tl.ContainsField(log.SystemSizeKey, float64(4)) {
		t.Errorf("fit record missing %s", log.SystemSizeKey)
	}
	if !tl.ContainsField(log.LambdaKey, float64(1)) {
		t.Errorf("fit record missing %s", log.LambdaKey)
	}
	if !tl.ContainsField(log.ModelNameKey, "Nystrom") {
		t.Errorf("fit record missing %s", log.ModelNameKey)
	}
}

func TestSetData(t *testing.T) {
	n := fixtureEstimator(t)

	if err := n.SetData(fixtureQuery()); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if got := n.NumQuery(); got != 2 {
		t.Errorf("NumQuery() = %d after SetData, want 2", got)
	}
	if got := n.NumData(); got != 3 {
		t.Errorf("NumData() = %d after SetData, want 3 (training data untouched)", got)
	}

	err := n.SetData(mat.NewDense(3, 2, nil))
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	if dimErr.Expected != 2 || dimErr.Got != 3 {
		t.Errorf("DimensionError = expected %d got %d, want expected 2 got 3", dimErr.Expected, dimErr.Got)
	}
}
