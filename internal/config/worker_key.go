package config

type WorkerKeyStruct struct {
	ExportResultsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ExportResultsQueue: "export_results_queue",
}
