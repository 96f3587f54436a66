// Package vonage is a thin client for the Vonage Verify API.
//
// It covers the two calls the verification flow needs, plus a credentials
// check used by the admin settings page:
//
//	client := vonage.NewClient(vonage.Config{
//		APIKey:    "key",
//		APISecret: "secret",
//		Brand:     "SimpleVerify",
//	})
//
//	outcome := client.StartVerification(ctx, "16193278653")
//	check := client.CheckCode(ctx, requestID, "123456")
//
// Provider responses are translated into typed outcomes rather than errors:
// the caller decides policy. The Verify API reports results through a
// string status field where "0" means success; a non-zero status whose
// error text mentions concurrent verifications means a code is already on
// its way to that number and the existing request should be resumed.
//
// The client performs no retries. Each call is a single synchronous POST
// with a bounded timeout.
package vonage
