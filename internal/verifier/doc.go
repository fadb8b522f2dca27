// Package verifier checks compiled .NET modules by serializing them to disk
// and running the external ilverify tool against the artifact.
//
// A verification runs these stages, each one failing with its own error kind:
//
//	probe      ilverify --version          -> ErrToolMissing
//	framework  dotnet --list-runtimes      -> ErrToolMissing
//	serialize  delete stale file, write    -> ErrSerializationFailed
//	run        ilverify "<module>" -r ...  -> ErrVerificationFailed / ErrToolExecution
//
// Configuration is an immutable Config value, usually produced by a Builder:
//
//	cfg := verifier.NewBuilder().
//		WithVerbosity(verifier.Detailed).
//		WithReference(ref).
//		Build()
//	err := verifier.Verify(ctx, cfg, unit)
//
// Verify blocks until the external tool exits. The context is the only
// cancellation point; the package defines no timeout of its own.
package verifier
