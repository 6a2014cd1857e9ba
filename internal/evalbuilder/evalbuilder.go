package evalbuilder

import (
	"fmt"

	material "github.com/millgame/mill/pkg/eval/material"
)

func Get(key string) func() interface{} {
	return func() interface{} {
		switch key {
		case "", "material":
			return material.NewEvaluationService()
		case "mobility":
			return material.NewMobilityEvaluationService()
		}
		panic(fmt.Errorf("bad eval %v", key))
	}
}
