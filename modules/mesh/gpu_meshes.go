package mesh

import (
	"context"

	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/chain"
	"github.com/specialistvlad/callgrid/internal/module"
)

// GPUMeshes uploads the meshes of its producer into a GPUMeshCollection.
// The upload is repeated only when the producer's hash or the requested
// frame changes.
type GPUMeshes struct {
	module.Base

	meshes  *module.CallerSlot
	chained *module.CallerSlot
	out     *module.CalleeSlot

	local     *GPUMeshCollection
	agg       chain.Aggregator
	gate      chain.Gate
	frame     uint32
	target    *GPUMeshCollection
	targetGen uint64
	indices   []int
	linked    *CallGPUMesh
}

func NewGPUMeshes() *GPUMeshes {
	m := &GPUMeshes{}
	m.meshes = m.MakeCallerSlot("meshes", "Connects mesh data to be uploaded", CallMeshDescription.ClassName)
	m.chained = m.MakeCallerSlot("chainedGPUMeshes", "Connects another GPU mesh producer", CallGPUMeshDescription.ClassName)
	m.out = m.MakeCalleeSlot("gpuMeshes", "Provides the uploaded meshes")
	m.out.SetCallback(CallGPUMeshDescription.ClassName, "GetData", m.getData)
	m.out.SetCallback(CallGPUMeshDescription.ClassName, "GetMetaData", m.getMetaData)
	return m
}

func (m *GPUMeshes) Create(ctx context.Context) error {
	m.local = NewGPUMeshCollection()
	m.gate.Invalidate()
	return nil
}

func (m *GPUMeshes) Release(ctx context.Context) {
	m.clearUploads()
	m.local = nil
	m.linked = nil
	m.gate.Invalidate()
}

// Uploads returns the number of completed uploads.
func (m *GPUMeshes) Uploads() int { return m.gate.Rebuilds() }

func (m *GPUMeshes) getData(c call.Call) bool {
	lhs, ok := call.As[*CallGPUMesh](c)
	if !ok {
		return false
	}
	collection := lhs.Data()
	if collection == nil {
		collection = m.local
		lhs.SetData(collection)
	}

	mc, ok := module.CallAs[*CallMesh](m.meshes)
	if !ok {
		return false
	}
	frame := lhs.MetaData().FrameID

	// A detached producer cannot remove what it uploaded, so a change of the
	// chained input starts the shared collection over.
	rhs, _ := module.CallAs[*CallGPUMesh](m.chained)
	if rhs != m.linked {
		m.Logger().Debug("Chained input changed, resetting the mesh collection.", "chained", rhs != nil)
		m.linked = rhs
		collection.Reset()
		m.gate.Invalidate()
	}

	if m.gate.NeedsRebuild(mc.MetaData().DataHash) || frame != m.frame || collection != m.target || collection.Generation() != m.targetGen {
		if !m.refresh(mc, collection, frame) {
			return false
		}
	}

	if rhs == nil {
		m.agg.Link(nil)
		m.agg.Publish(lhs, mc.MetaData(), nil)
		return true
	}
	m.agg.Link(rhs)
	rhs.SetData(collection)
	requestFrame(rhs, frame)
	if !rhs.Invoke(call.FnGetData) {
		return false
	}
	// A producer further down the chain started the collection over.
	if collection.Generation() != m.targetGen {
		if !m.refresh(mc, collection, frame) {
			return false
		}
	}
	rhsMeta := rhs.MetaData()
	m.agg.Publish(lhs, mc.MetaData(), &rhsMeta)
	return true
}

// refresh fetches frame from the mesh producer and uploads it into
// collection.
func (m *GPUMeshes) refresh(mc *CallMesh, collection *GPUMeshCollection, frame uint32) bool {
	requestFrame(mc, frame)
	if !mc.Invoke(call.FnGetData) {
		return false
	}
	m.gate.Begin(mc.MetaData().DataHash)
	m.frame = frame
	m.upload(collection, mc.Data())
	m.gate.Commit()
	m.agg.Bump()
	return true
}

func (m *GPUMeshes) getMetaData(c call.Call) bool {
	lhs, ok := call.As[*CallGPUMesh](c)
	if !ok {
		return false
	}
	mc, ok := module.CallAs[*CallMesh](m.meshes)
	if !ok {
		return false
	}
	var secondary chain.SpatialCall
	if rhs, ok := module.CallAs[*CallGPUMesh](m.chained); ok {
		secondary = rhs
	}
	return m.agg.GetMetaData(lhs, mc, secondary)
}

// upload replaces the meshes this module previously added to target.
func (m *GPUMeshes) upload(target *GPUMeshCollection, src *MeshCollection) {
	m.clearUploads()
	m.target = target
	m.targetGen = target.Generation()
	if src == nil {
		return
	}
	for i, mesh := range src.Meshes() {
		idx, err := target.Upload(mesh)
		if err != nil {
			m.Logger().Error("Skipping malformed mesh.", "mesh", i, "error", err)
			continue
		}
		m.indices = append(m.indices, idx)
	}
	m.Logger().Debug("Meshes uploaded.", "meshes", len(m.indices), "hash", m.gate.Hash(), "frame", m.frame)
}

func (m *GPUMeshes) clearUploads() {
	if m.target != nil {
		for _, idx := range m.indices {
			m.target.Delete(idx)
		}
	}
	m.indices = m.indices[:0]
	m.target = nil
}
