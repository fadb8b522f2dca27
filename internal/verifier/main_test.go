package verifier

import (
	"os"
	"testing"

	"github.com/ariel-frischer/ilverify/internal/testutil"
)

// TestMain lets the test binary stand in for ilverify in end-to-end tests.
func TestMain(m *testing.M) {
	testutil.MaybeRunHelperProcess()
	os.Exit(m.Run())
}
