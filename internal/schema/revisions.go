// SPDX-License-Identifier: Apache-2.0

package schema

// DefaultChain returns the built-in revision chain that evolves a 1.10.x
// metadata schema to the 2.0 baseline. Order is root to head.
func DefaultChain() *Chain {
	chain, err := NewChain(defaultRevisions()...)
	if err != nil {
		// The built-in chain is validated by tests; a broken set is a
		// programming error.
		panic(err)
	}
	return chain
}

func defaultRevisions() []Revision {
	return []Revision{
		{
			ID:          "952da73b5eff",
			Description: "add dag_code table",
			UpgradeStatements: []string{
				`CREATE TABLE dag_code (
    fileloc_hash BIGINT NOT NULL,
    fileloc VARCHAR(2000) NOT NULL,
    source_code TEXT NOT NULL,
    last_updated TIMESTAMP WITH TIME ZONE NOT NULL,
    PRIMARY KEY (fileloc_hash)
)`,
			},
			DowngradeStatements: []string{
				`DROP TABLE dag_code`,
			},
		},
		{
			ID:           "a4c2fd67d16b",
			DownRevision: "952da73b5eff",
			Description:  "add pool_slots field to task_instance",
			UpgradeStatements: []string{
				`ALTER TABLE task_instance ADD COLUMN pool_slots INTEGER`,
			},
			DowngradeStatements: []string{
				`ALTER TABLE task_instance DROP COLUMN pool_slots`,
			},
		},
		{
			ID:           "7939bcff74ba",
			DownRevision: "a4c2fd67d16b",
			Description:  "add dag_tag table",
			UpgradeStatements: []string{
				`CREATE TABLE dag_tag (
    name VARCHAR(100) NOT NULL,
    dag_id VARCHAR(250) NOT NULL,
    PRIMARY KEY (name, dag_id),
    FOREIGN KEY (dag_id) REFERENCES dag (dag_id)
)`,
			},
			DowngradeStatements: []string{
				`DROP TABLE dag_tag`,
			},
		},
		{
			ID:           "d38e04c12aa2",
			DownRevision: "7939bcff74ba",
			Description:  "add serialized_dag table",
			UpgradeStatements: []string{
				`CREATE TABLE serialized_dag (
    dag_id VARCHAR(250) NOT NULL,
    fileloc VARCHAR(2000) NOT NULL,
    fileloc_hash INTEGER NOT NULL,
    data JSON NOT NULL,
    last_updated TIMESTAMP NOT NULL,
    PRIMARY KEY (dag_id)
)`,
				`CREATE INDEX idx_fileloc_hash ON serialized_dag (fileloc_hash)`,
			},
			DowngradeStatements: []string{
				`DROP INDEX idx_fileloc_hash`,
				`DROP TABLE serialized_dag`,
			},
		},
		{
			ID:           "b25a55525161",
			DownRevision: "d38e04c12aa2",
			Description:  "increase length of pool name",
			UpgradeStatements: []string{
				`ALTER TABLE slot_pool ALTER COLUMN pool TYPE VARCHAR(256)`,
			},
			DowngradeStatements: []string{
				`ALTER TABLE slot_pool ALTER COLUMN pool TYPE VARCHAR(50)`,
			},
		},
		{
			ID:           "8f966b9c467a",
			DownRevision: "b25a55525161",
			Description:  "set conn_type as non-nullable",
			UpgradeStatements: []string{
				`UPDATE connection SET conn_type = 'fs' WHERE conn_type IS NULL`,
				`ALTER TABLE connection ALTER COLUMN conn_type SET NOT NULL`,
			},
			DowngradeStatements: []string{
				`ALTER TABLE connection ALTER COLUMN conn_type DROP NOT NULL`,
			},
		},
	}
}
