// Package simenv runs one logical test method several times, once per
// simulated platform configuration, each inside an isolated execution
// environment that is created once and reused across tests.
//
// A method's configuration is merged from global options, package
// simenv.yaml files, the class and the method. It selects platform levels
// and a resource mode; expansion turns it into variants such as
// "testFoo[28]", "testFoo[29]" and "testFoo". Each variant then goes
// through a fixed lifecycle: select an environment, set up the application,
// invoke the body, tear down and reset shared state. Teardown and reset run
// on every exit path.
//
// # Basic Usage
//
//	import "github.com/giantswarm/simenv"
//
//	ctx := context.Background()
//
//	runner := simenv.NewRunner(simenv.WithResourceMode(simenv.ResourceBoth))
//	if err := runner.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer runner.Shutdown()
//
//	report, err := runner.Run(ctx, simenv.TestClass{
//	    Name:   "com.example.FooTest",
//	    Config: simenv.Config{SDK: []int{28, 29}},
//	    Methods: []simenv.TestMethod{{
//	        Name: "testFoo",
//	        Body: func(ctx context.Context, tc *simenv.TestContext) error {
//	            if tc.Platform().Level < 29 {
//	                return simenv.Skip("needs level 29")
//	            }
//	            return nil
//	        },
//	    }},
//	})
//
// # Sharing Environments
//
// Environments are keyed by class-loader configuration, platform version and
// resource mode. Runners that should reuse each other's environments share
// one Services value:
//
//	services := simenv.ProcessServices()
//	a := simenv.NewRunner(simenv.WithServices(services))
//	b := simenv.NewRunner(simenv.WithServices(services), simenv.WithParallelism(4))
//
// Shared Services are not closed by Runner.Shutdown.
package simenv
