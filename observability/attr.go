package observability

import "go.opentelemetry.io/otel/attribute"

const EngineKey attribute.Key = "engine"

// Engine returns the engine name attribute.
func Engine(name string) attribute.KeyValue {
	return EngineKey.String(name)
}

/*
ErrStatus returns attribute named "status" with value "ok" if the param
err is nil and "err" when it is not.
*/
func ErrStatus(err error) attribute.KeyValue {
	status := "ok"
	if err != nil {
		status = "err"
	}
	return attribute.String("status", status)
}
