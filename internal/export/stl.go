package export

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/eugenenazirov/box-packer/internal/packing"
)

// DefaultMeshCells is the marching cubes resolution along the longest axis.
const DefaultMeshCells = 100

// ContainerSolid builds the union of the container's placed items as an SDF.
func ContainerSolid(c *packing.Container) (sdf.SDF3, error) {
	if len(c.Items) == 0 {
		return nil, fmt.Errorf("container %d: %w", c.ID, ErrEmptyContainer)
	}

	solids := make([]sdf.SDF3, 0, len(c.Items))
	for _, p := range c.Items {
		box, err := sdf.Box3D(v3.Vec{X: p.Length, Y: p.Breadth, Z: p.Height}, 0)
		if err != nil {
			return nil, fmt.Errorf("box for %s: %w", p.Item.Name, err)
		}
		// Box3D is centred on the origin; move its min corner to the placement.
		m := sdf.Translate3d(v3.Vec{
			X: p.X + p.Length/2,
			Y: p.Y + p.Breadth/2,
			Z: p.Z + p.Height/2,
		})
		solids = append(solids, sdf.Transform3D(box, m))
	}

	return sdf.Union3D(solids...), nil
}

// WriteSTL tessellates the container contents and saves them as an STL file.
func WriteSTL(path string, c *packing.Container, cells int) error {
	solid, err := ContainerSolid(c)
	if err != nil {
		return err
	}
	if cells <= 0 {
		cells = DefaultMeshCells
	}

	triangles := render.ToTriangles(solid, render.NewMarchingCubesUniform(cells))
	if err := render.SaveSTL(path, triangles); err != nil {
		return fmt.Errorf("save stl %s: %w", path, err)
	}
	return nil
}
