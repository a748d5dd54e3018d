package repository

import (
	"database/sql"
	"fmt"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

// WorkflowRepository persists workflow definitions together with their nodes and edges.
type WorkflowRepository struct {
	db    *sql.DB
	clock core.Clock
}

const WORKFLOW_COLUMNS = ` id, name, description, user_id, is_active, version, created, modified `
const NODE_COLUMNS = ` id, workflow_id, node_id, node_type, label, position_x, position_y, configuration `
const EDGE_COLUMNS = ` id, workflow_id, edge_id, source_node_id, target_node_id, source_handle, target_handle `

func NewWorkflowRepository(db *sql.DB, clock core.Clock) *WorkflowRepository {
	return &WorkflowRepository{db: db, clock: clock}
}

// Save inserts the workflow, its nodes and its edges in one transaction.
func (r *WorkflowRepository) Save(wf *domain.Workflow) (int64, error) {
	now := r.clock.Now().UTC()
	wf.Created = now
	wf.Modified = now
	if wf.Version == 0 {
		wf.Version = 1
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	base := `INSERT INTO workflows (name, description, user_id, is_active, version, created, modified)
		VALUES (` + placeholders(1, 7) + `)`
	id, err := insertReturningID(tx, base, wf.Name, wf.Description, wf.UserID, wf.IsActive, wf.Version,
		formatDateInDatabase(wf.Created), formatDateInDatabase(wf.Modified))
	if err != nil {
		return 0, fmt.Errorf("insert workflow: %w", err)
	}
	wf.ID = id

	if err := r.insertGraph(tx, wf); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Update replaces the definition and its whole graph, bumping the version.
func (r *WorkflowRepository) Update(wf *domain.Workflow) error {
	wf.Modified = r.clock.Now().UTC()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE workflows
		SET name = ` + placeholder(1) + `, description = ` + placeholder(2) + `, is_active = ` + placeholder(3) + `,
		    version = version + 1, modified = ` + placeholder(4) + `
		WHERE id = ` + placeholder(5)
	res, err := tx.Exec(query, wf.Name, wf.Description, wf.IsActive, formatDateInDatabase(wf.Modified), wf.ID)
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	if err := deleteGraph(tx, wf.ID); err != nil {
		return err
	}
	if err := r.insertGraph(tx, wf); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *WorkflowRepository) insertGraph(tx *sql.Tx, wf *domain.Workflow) error {
	nodeInsert := `INSERT INTO workflow_nodes (workflow_id, node_id, node_type, label, position_x, position_y, configuration)
		VALUES (` + placeholders(1, 7) + `)`
	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		n.WorkflowID = wf.ID
		if n.Configuration == "" {
			n.Configuration = "{}"
		}
		id, err := insertReturningID(tx, nodeInsert, wf.ID, n.NodeID, string(n.NodeType), n.Label, n.PositionX, n.PositionY, n.Configuration)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.NodeID, err)
		}
		n.ID = id
	}

	edgeInsert := `INSERT INTO workflow_edges (workflow_id, edge_id, source_node_id, target_node_id, source_handle, target_handle)
		VALUES (` + placeholders(1, 6) + `)`
	for i := range wf.Edges {
		e := &wf.Edges[i]
		e.WorkflowID = wf.ID
		id, err := insertReturningID(tx, edgeInsert, wf.ID, e.EdgeID, e.SourceNodeID, e.TargetNodeID, e.SourceHandle, e.TargetHandle)
		if err != nil {
			return fmt.Errorf("insert edge %s: %w", e.EdgeID, err)
		}
		e.ID = id
	}
	return nil
}

func deleteGraph(tx *sql.Tx, workflowID int64) error {
	if _, err := tx.Exec(`DELETE FROM workflow_edges WHERE workflow_id = `+placeholder(1), workflowID); err != nil {
		return err
	}
	_, err := tx.Exec(`DELETE FROM workflow_nodes WHERE workflow_id = `+placeholder(1), workflowID)
	return err
}

// FindByID loads a workflow with its nodes and edges. Returns (nil, nil) if not found.
func (r *WorkflowRepository) FindByID(id int64) (*domain.Workflow, error) {
	query := `SELECT ` + WORKFLOW_COLUMNS + ` FROM workflows WHERE id = ` + placeholder(1)

	wf, err := scanWorkflow(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if wf.Nodes, err = r.findNodes(id); err != nil {
		return nil, err
	}
	if wf.Edges, err = r.findEdges(id); err != nil {
		return nil, err
	}
	return wf, nil
}

// FindAll returns every workflow without its graph, ordered by id.
func (r *WorkflowRepository) FindAll() (*[]domain.Workflow, error) {
	rows, err := r.db.Query(`SELECT ` + WORKFLOW_COLUMNS + ` FROM workflows ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workflows := make([]domain.Workflow, 0)
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, *wf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &workflows, nil
}

// Delete removes the workflow together with its graph, executions and schedules.
func (r *WorkflowRepository) Delete(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteGraph(tx, id); err != nil {
		return err
	}
	statements := []string{
		`DELETE FROM execution_logs WHERE execution_id IN (SELECT id FROM workflow_executions WHERE workflow_id = ` + placeholder(1) + `)`,
		`DELETE FROM workflow_executions WHERE workflow_id = ` + placeholder(1),
		`DELETE FROM scheduled_workflows WHERE workflow_id = ` + placeholder(1),
		`DELETE FROM workflows WHERE id = ` + placeholder(1),
	}
	for _, s := range statements {
		if _, err := tx.Exec(s, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*domain.Workflow, error) {
	var wf domain.Workflow
	if err := row.Scan(
		&wf.ID,
		&wf.Name,
		&wf.Description,
		&wf.UserID,
		&wf.IsActive,
		&wf.Version,
		&wf.Created,
		&wf.Modified,
	); err != nil {
		return nil, err
	}
	wf.Created = utc(wf.Created)
	wf.Modified = utc(wf.Modified)
	return &wf, nil
}

func (r *WorkflowRepository) findNodes(workflowID int64) ([]domain.Node, error) {
	rows, err := r.db.Query(`SELECT `+NODE_COLUMNS+` FROM workflow_nodes WHERE workflow_id = `+placeholder(1)+` ORDER BY id ASC`, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := make([]domain.Node, 0)
	for rows.Next() {
		var n domain.Node
		var nodeType string
		if err := rows.Scan(&n.ID, &n.WorkflowID, &n.NodeID, &nodeType, &n.Label, &n.PositionX, &n.PositionY, &n.Configuration); err != nil {
			return nil, err
		}
		n.NodeType = domain.NodeType(nodeType)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (r *WorkflowRepository) findEdges(workflowID int64) ([]domain.Edge, error) {
	rows, err := r.db.Query(`SELECT `+EDGE_COLUMNS+` FROM workflow_edges WHERE workflow_id = `+placeholder(1)+` ORDER BY id ASC`, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	edges := make([]domain.Edge, 0)
	for rows.Next() {
		var e domain.Edge
		if err := rows.Scan(&e.ID, &e.WorkflowID, &e.EdgeID, &e.SourceNodeID, &e.TargetNodeID, &e.SourceHandle, &e.TargetHandle); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
