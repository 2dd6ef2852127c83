package main

import (
	"ProjectTracker/internal/bootstrap"
	pkg "ProjectTracker/pkg/routes"

	"go.uber.org/fx"
)

func main() {
	bootstrap.Loadenv()
	app := fx.New(
		pkg.EchoModules,
	)

	app.Run()
}
