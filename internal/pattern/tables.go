// SPDX-License-Identifier: Apache-2.0

package pattern

// Default vocabulary for the Airflow 1.x to 2.x migration. Each map is built
// fresh per Table so options never leak between instances.

func defaultImportMap() map[string]string {
	return map[string]string{
		// Core operators moved out of the *_operator modules.
		"operators.bash_operator":          "operators.bash",
		"operators.python_operator":        "operators.python",
		"operators.dummy_operator":         "operators.dummy",
		"operators.email_operator":         "operators.email",
		"operators.branch_operator":        "operators.branch",
		"operators.subdag_operator":        "operators.subdag",
		"operators.latest_only_operator":   "operators.latest_only",
		"sensors.base_sensor_operator":     "sensors.base",
		"sensors.external_task_sensor":     "sensors.external_task",
		"hooks.base_hook":                  "hooks.base",
		"hooks.dbapi_hook":                 "hooks.dbapi",
		"utils.dates":                      "utils.dates",
		"contrib.hooks.ssh_hook":           "providers.ssh.hooks.ssh",
		"contrib.operators.ssh_operator":   "providers.ssh.operators.ssh",
		"hooks.http_hook":                  "providers.http.hooks.http",
		"operators.http_operator":          "providers.http.operators.http",
		"sensors.http_sensor":              "providers.http.sensors.http",
		"hooks.postgres_hook":              "providers.postgres.hooks.postgres",
		"operators.postgres_operator":      "providers.postgres.operators.postgres",
		"hooks.mysql_hook":                 "providers.mysql.hooks.mysql",
		"operators.mysql_operator":         "providers.mysql.operators.mysql",
		"operators.slack_operator":         "providers.slack.operators.slack",
		"contrib.operators.kubernetes_pod_operator": "providers.cncf.kubernetes.operators.kubernetes_pod",
	}
}

func defaultOperatorMap() map[string]string {
	return map[string]string{
		"BashOperator":          "airflow.operators.bash.BashOperator",
		"PythonOperator":        "airflow.operators.python.PythonOperator",
		"BranchPythonOperator":  "airflow.operators.python.BranchPythonOperator",
		"ShortCircuitOperator":  "airflow.operators.python.ShortCircuitOperator",
		"DummyOperator":         "airflow.operators.dummy.DummyOperator",
		"EmailOperator":         "airflow.operators.email.EmailOperator",
		"SubDagOperator":        "airflow.operators.subdag.SubDagOperator",
		"SimpleHttpOperator":    "airflow.providers.http.operators.http.SimpleHttpOperator",
		"PostgresOperator":      "airflow.providers.postgres.operators.postgres.PostgresOperator",
		"MySqlOperator":         "airflow.providers.mysql.operators.mysql.MySqlOperator",
		"BigQueryOperator":      "airflow.providers.google.cloud.operators.bigquery.BigQueryExecuteQueryOperator",
		"DataflowPythonOperator": "airflow.providers.google.cloud.operators.dataflow.DataflowCreatePythonJobOperator",
		"DataProcPySparkOperator": "airflow.providers.google.cloud.operators.dataproc.DataprocSubmitPySparkJobOperator",
		"GoogleCloudStorageToBigQueryOperator": "airflow.providers.google.cloud.transfers.gcs_to_bigquery.GCSToBigQueryOperator",
		"KubernetesPodOperator": "airflow.providers.cncf.kubernetes.operators.kubernetes_pod.KubernetesPodOperator",
	}
}

func defaultDeprecatedParams() map[string]struct{} {
	return map[string]struct{}{
		// provide_context: execution context is injected automatically in 2.x.
		"provide_context": {},
		// xcom_push: BashOperator pushes the last line unconditionally in 2.x.
		"xcom_push": {},
	}
}

// ContextInjectionParam is the historical flag that requested execution
// context injection into python callables. It is stripped like any other
// deprecated parameter, but when set to True it also raises a migration
// warning because the callable signature may still expect kwargs.
const ContextInjectionParam = "provide_context"

func defaultConnTypeMap() map[string]string {
	return map[string]string{
		"gcp": "google_cloud_platform",
		"s3":  "aws",
		"emr": "aws",
	}
}

// GoogleCloudConnType is the canonical cloud-provider connection type that
// receives the project -> project_id forward-compatibility shim.
const GoogleCloudConnType = "google_cloud_platform"

func defaultProviderPaths() map[string]string {
	return map[string]string{
		"bigquery": "google.cloud",
		"dataflow": "google.cloud",
		"dataproc": "google.cloud",
		"gcs":      "google.cloud",
		"gcp":      "google.cloud",
		"pubsub":   "google.cloud",
		"mlengine": "google.cloud",
		"s3":       "amazon.aws",
		"emr":      "amazon.aws",
		"aws":      "amazon.aws",
		"azure":    "microsoft.azure",
		"databricks": "databricks",
	}
}

func defaultBaseClassKinds() map[string]string {
	return map[string]string{
		"BaseHook":           "hook",
		"BaseOperator":       "operator",
		"BaseSensorOperator": "sensor",
	}
}
